package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/tenantly/tenantly-api/internal/config"
	"github.com/tenantly/tenantly-api/internal/model"
	"github.com/tenantly/tenantly-api/pkg/auth"
)

// fakeStore is the shared in-memory state behind the fake repositories. The
// fake transaction manager snapshots and restores it to imitate rollback.
type fakeStore struct {
	accounts      map[string]*model.Account
	organizations map[string]*model.Organization
	roles         map[model.RoleName]*model.Role
	accountRoles  []*model.AccountRole
	projects      []*model.Project
	requests      map[string]*model.PasswordResetRequest
}

func newFakeStore() *fakeStore {
	store := &fakeStore{
		accounts:      make(map[string]*model.Account),
		organizations: make(map[string]*model.Organization),
		roles:         make(map[model.RoleName]*model.Role),
		requests:      make(map[string]*model.PasswordResetRequest),
	}

	for _, name := range []model.RoleName{model.RoleAdmin, model.RoleMember} {
		store.roles[name] = &model.Role{ID: bson.NewObjectID(), Name: name}
	}

	return store
}

func (s *fakeStore) clone() *fakeStore {
	c := &fakeStore{
		accounts:      make(map[string]*model.Account, len(s.accounts)),
		organizations: make(map[string]*model.Organization, len(s.organizations)),
		roles:         make(map[model.RoleName]*model.Role, len(s.roles)),
		requests:      make(map[string]*model.PasswordResetRequest, len(s.requests)),
	}
	for k, v := range s.accounts {
		cp := *v
		c.accounts[k] = &cp
	}
	for k, v := range s.organizations {
		cp := *v
		c.organizations[k] = &cp
	}
	for k, v := range s.roles {
		cp := *v
		c.roles[k] = &cp
	}
	for _, v := range s.accountRoles {
		cp := *v
		c.accountRoles = append(c.accountRoles, &cp)
	}
	for _, v := range s.projects {
		cp := *v
		c.projects = append(c.projects, &cp)
	}
	for k, v := range s.requests {
		cp := *v
		c.requests[k] = &cp
	}
	return c
}

type fakeTxnManager struct {
	store *fakeStore
}

func (m *fakeTxnManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := m.store.clone()
	if err := fn(ctx); err != nil {
		*m.store = *snapshot
		return err
	}
	return nil
}

type fakeAccountRepo struct {
	store     *fakeStore
	createErr error
	getErr    error
	setErr    error
}

func (r *fakeAccountRepo) CreateAccount(_ context.Context, account *model.Account) (*model.Account, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	account.ID = bson.NewObjectID()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	r.store.accounts[account.ID.Hex()] = account
	return account, nil
}

func (r *fakeAccountRepo) GetAccount(_ context.Context, id string) (*model.Account, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	account, ok := r.store.accounts[id]
	if !ok || account.DeletedAt != nil {
		return nil, mongo.ErrNoDocuments
	}
	return account, nil
}

func (r *fakeAccountRepo) GetAccountByEmail(_ context.Context, email string) (*model.Account, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, account := range r.store.accounts {
		if account.Email == email && account.DeletedAt == nil {
			return account, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeAccountRepo) ConfirmAccount(_ context.Context, id string) error {
	account, ok := r.store.accounts[id]
	if !ok {
		return nil
	}
	if account.ConfirmedAt == nil {
		now := time.Now()
		account.ConfirmedAt = &now
	}
	return nil
}

func (r *fakeAccountRepo) SetPasswordHash(_ context.Context, id, hash string) error {
	if r.setErr != nil {
		return r.setErr
	}
	if account, ok := r.store.accounts[id]; ok {
		account.PasswordHash = hash
	}
	return nil
}

func (r *fakeAccountRepo) SoftDeleteAccount(_ context.Context, id string) error {
	if account, ok := r.store.accounts[id]; ok {
		now := time.Now()
		account.DeletedAt = &now
	}
	return nil
}

func (r *fakeAccountRepo) CountAccounts(_ context.Context) (int64, error) {
	return int64(len(r.store.accounts)), nil
}

type fakeOrganizationRepo struct {
	store     *fakeStore
	createErr error
}

func (r *fakeOrganizationRepo) CreateOrganization(
	_ context.Context,
	organization *model.Organization,
) (*model.Organization, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	organization.ID = bson.NewObjectID()
	r.store.organizations[organization.ID.Hex()] = organization
	return organization, nil
}

func (r *fakeOrganizationRepo) GetOrganization(_ context.Context, id string) (*model.Organization, error) {
	organization, ok := r.store.organizations[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return organization, nil
}

type fakeRoleRepo struct {
	store     *fakeStore
	assignErr error
}

func (r *fakeRoleRepo) GetRoleByName(_ context.Context, name model.RoleName) (*model.Role, error) {
	role, ok := r.store.roles[name]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return role, nil
}

func (r *fakeRoleRepo) AssignRole(_ context.Context, accountID, roleID bson.ObjectID) error {
	if r.assignErr != nil {
		return r.assignErr
	}
	r.store.accountRoles = append(r.store.accountRoles, &model.AccountRole{
		ID:        bson.NewObjectID(),
		AccountID: accountID,
		RoleID:    roleID,
	})
	return nil
}

func (r *fakeRoleRepo) ListAccountRoles(_ context.Context, accountID bson.ObjectID) ([]*model.AccountRole, error) {
	var assignments []*model.AccountRole
	for _, assignment := range r.store.accountRoles {
		if assignment.AccountID == accountID {
			assignments = append(assignments, assignment)
		}
	}
	return assignments, nil
}

type fakeProjectRepo struct {
	store     *fakeStore
	createErr error
}

func (r *fakeProjectRepo) CreateProject(_ context.Context, project *model.Project) (*model.Project, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	project.ID = bson.NewObjectID()
	r.store.projects = append(r.store.projects, project)
	return project, nil
}

func (r *fakeProjectRepo) ListProjectsByAccountID(
	_ context.Context,
	accountID bson.ObjectID,
) ([]*model.Project, error) {
	var projects []*model.Project
	for _, project := range r.store.projects {
		if project.AccountID == accountID {
			projects = append(projects, project)
		}
	}
	return projects, nil
}

type fakeResetRepo struct {
	store     *fakeStore
	createErr error
}

func (r *fakeResetRepo) CreateRequest(
	_ context.Context,
	request *model.PasswordResetRequest,
) (*model.PasswordResetRequest, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	request.ID = bson.NewObjectID()
	request.IsValid = true
	request.CreatedAt = time.Now()
	r.store.requests[request.Hash] = request
	return request, nil
}

func (r *fakeResetRepo) GetRequestByHash(_ context.Context, hash string) (*model.PasswordResetRequest, error) {
	request, ok := r.store.requests[hash]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return request, nil
}

func (r *fakeResetRepo) InvalidateRequestByHash(_ context.Context, hash string) error {
	if request, ok := r.store.requests[hash]; ok {
		request.IsValid = false
	}
	return nil
}

func (r *fakeResetRepo) ListRequestsByAccountID(
	_ context.Context,
	accountID string,
) ([]*model.PasswordResetRequest, error) {
	var requests []*model.PasswordResetRequest
	for _, request := range r.store.requests {
		if request.AccountID.Hex() == accountID {
			requests = append(requests, request)
		}
	}
	return requests, nil
}

type sentEmail struct {
	to      []string
	subject string
	body    string
}

type fakeMailer struct {
	sent    []sentEmail
	sendErr error
}

func (m *fakeMailer) SendSimple(to []string, subject, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

// lastEmailToken extracts the token from the link in the most recent email.
func (m *fakeMailer) lastEmailToken() string {
	if len(m.sent) == 0 {
		return ""
	}
	body := m.sent[len(m.sent)-1].body
	idx := strings.LastIndex(body, "/")
	if idx < 0 {
		return ""
	}
	return body[idx+1:]
}

// fixture wires the usecases against the in-memory fakes.
type fixture struct {
	store    *fakeStore
	accounts *fakeAccountRepo
	orgs     *fakeOrganizationRepo
	roles    *fakeRoleRepo
	projects *fakeProjectRepo
	resets   *fakeResetRepo
	mailer   *fakeMailer
	tokens   *auth.TokenIssuer
	cfg      *config.Config

	auth     AuthUsecase
	password PasswordUsecase
}

func newFixture() *fixture {
	store := newFakeStore()
	cfg := &config.Config{
		WebAppURL: "http://localhost:3000",
		Token: config.TokenConfig{
			Secret:                "test-secret",
			AccessTokenExpiresIn:  "30m",
			RefreshTokenExpiresIn: "1d",
			ConfirmationExpiresIn: "30m",
		},
		Password: config.PasswordConfig{
			Salt:       "test-salt",
			Iterations: 1000,
		},
	}

	f := &fixture{
		store:    store,
		accounts: &fakeAccountRepo{store: store},
		orgs:     &fakeOrganizationRepo{store: store},
		roles:    &fakeRoleRepo{store: store},
		projects: &fakeProjectRepo{store: store},
		resets:   &fakeResetRepo{store: store},
		mailer:   &fakeMailer{},
		tokens:   auth.NewTokenIssuer(cfg.Token.Secret),
		cfg:      cfg,
	}

	logger := zerolog.Nop()
	txn := &fakeTxnManager{store: store}

	f.auth = NewAuthUsecase(f.accounts, f.orgs, f.roles, f.projects, txn, f.tokens, f.mailer, cfg, &logger)
	f.password = NewPasswordUsecase(f.accounts, f.resets, txn, f.tokens, f.mailer, cfg, &logger)

	return f
}

// signUp creates an account through the real flow and returns it.
func (f *fixture) signUp(ctx context.Context, email, password string) (*model.Account, error) {
	err := f.auth.SignUp(ctx, SignUpParams{
		Email:     email,
		Password:  password,
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	if err != nil {
		return nil, err
	}
	return f.accounts.GetAccountByEmail(ctx, email)
}

// signUpConfirmed creates and confirms an account through the real flows.
func (f *fixture) signUpConfirmed(ctx context.Context, email, password string) (*model.Account, error) {
	if _, err := f.signUp(ctx, email, password); err != nil {
		return nil, err
	}
	if err := f.auth.ConfirmEmail(ctx, f.mailer.lastEmailToken()); err != nil {
		return nil, err
	}
	return f.accounts.GetAccountByEmail(ctx, email)
}
