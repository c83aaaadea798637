package services

import (
  "context"
  "testing"
  "time"

  "github.com/google/uuid"

  "github.com/skillforge/skillforge-backend/internal/apperr"
  "github.com/skillforge/skillforge-backend/internal/requestdata"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type authFixture struct {
  svc    AuthService
  users  *fakeUserRepo
  tokens *fakeUserTokenRepo
}

func newAuthFixture(t *testing.T) *authFixture {
  t.Helper()
  f := &authFixture{
    users:  newFakeUserRepo(),
    tokens: newFakeUserTokenRepo(),
  }
  f.svc = NewAuthService(testDB(), testLogger(), f.users, f.tokens, "test-secret", time.Hour, 24*time.Hour)
  return f
}

func (f *authFixture) register(t *testing.T, email, password string) *types.User {
  t.Helper()
  user, err := f.svc.RegisterUser(context.Background(), &types.User{
    Email:    email,
    FullName: "Test Student",
    Password: password,
  })
  if err != nil {
    t.Fatalf("RegisterUser returned error: %v", err)
  }
  return user
}

func TestRegisterUser(t *testing.T) {
  f := newAuthFixture(t)

  user := f.register(t, "Student@Example.COM ", "hunter22")
  if user.Email != "student@example.com" {
    t.Errorf("email = %q, want normalized lowercase", user.Email)
  }
  if user.Role != types.RoleStudent {
    t.Errorf("role = %q, want student", user.Role)
  }
  if user.Password == "hunter22" {
    t.Error("password stored in plaintext")
  }
  if !user.IsActive {
    t.Error("new account not active")
  }
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
  f := newAuthFixture(t)
  f.register(t, "dup@example.com", "hunter22")

  _, err := f.svc.RegisterUser(context.Background(), &types.User{Email: "dup@example.com", Password: "other"})
  ae := apperr.As(err)
  if ae.Kind != apperr.KindConflict || ae.Code != "email_taken" {
    t.Fatalf("duplicate register = %v, want email_taken conflict", err)
  }
}

func TestRegisterUserRoleEscalation(t *testing.T) {
  f := newAuthFixture(t)
  ctx := context.Background()

  // Anonymous signups cannot pick elevated roles.
  user, err := f.svc.RegisterUser(ctx, &types.User{Email: "sneaky@example.com", Password: "pw123456", Role: types.RoleAdmin})
  if err != nil {
    t.Fatalf("RegisterUser returned error: %v", err)
  }
  if user.Role != types.RoleStudent {
    t.Errorf("role = %q, want student for anonymous signup", user.Role)
  }

  // An authenticated admin may mint instructors.
  adminCtx := requestdata.WithRequestData(ctx, &requestdata.RequestData{Role: types.RoleAdmin})
  user, err = f.svc.RegisterUser(adminCtx, &types.User{Email: "teach@example.com", Password: "pw123456", Role: types.RoleInstructor})
  if err != nil {
    t.Fatalf("RegisterUser returned error: %v", err)
  }
  if user.Role != types.RoleInstructor {
    t.Errorf("role = %q, want instructor when created by admin", user.Role)
  }
}

func TestLoginUser(t *testing.T) {
  f := newAuthFixture(t)
  f.register(t, "login@example.com", "hunter22")
  ctx := context.Background()

  access, refresh, user, err := f.svc.LoginUser(ctx, "login@example.com", "hunter22")
  if err != nil {
    t.Fatalf("LoginUser returned error: %v", err)
  }
  if access == "" || refresh == "" {
    t.Fatal("empty tokens returned")
  }
  if user.Email != "login@example.com" {
    t.Errorf("user email = %q", user.Email)
  }

  // The issued token round-trips into request data.
  authedCtx, err := f.svc.SetContextFromToken(ctx, access)
  if err != nil {
    t.Fatalf("SetContextFromToken returned error: %v", err)
  }
  rd := requestdata.GetRequestData(authedCtx)
  if rd == nil {
    t.Fatal("no request data attached")
  }
  if rd.UserID != user.ID {
    t.Errorf("user id = %s, want %s", rd.UserID, user.ID)
  }
  if rd.Role != types.RoleStudent {
    t.Errorf("role = %q, want student", rd.Role)
  }
  if rd.RefreshToken != refresh {
    t.Errorf("refresh token not resolved from session store")
  }
}

func TestLoginUserRejections(t *testing.T) {
  f := newAuthFixture(t)
  user := f.register(t, "reject@example.com", "hunter22")
  ctx := context.Background()

  cases := []struct {
    name     string
    setup    func()
    email    string
    password string
    code     string
  }{
    {"unknown email", func() {}, "nobody@example.com", "hunter22", "invalid_credentials"},
    {"wrong password", func() {}, "reject@example.com", "wrong", "invalid_credentials"},
    {"deactivated account", func() { user.IsActive = false }, "reject@example.com", "hunter22", "inactive_account"},
  }
  for _, tc := range cases {
    t.Run(tc.name, func(t *testing.T) {
      tc.setup()
      _, _, _, err := f.svc.LoginUser(ctx, tc.email, tc.password)
      ae := apperr.As(err)
      if ae.Kind != apperr.KindUnauthorized || ae.Code != tc.code {
        t.Fatalf("LoginUser = %v, want unauthorized %s", err, tc.code)
      }
    })
  }
}

func TestLoginReplacesStaleSession(t *testing.T) {
  f := newAuthFixture(t)
  user := f.register(t, "stale@example.com", "hunter22")
  ctx := context.Background()

  if _, _, _, err := f.svc.LoginUser(ctx, "stale@example.com", "hunter22"); err != nil {
    t.Fatalf("first login returned error: %v", err)
  }
  if _, _, _, err := f.svc.LoginUser(ctx, "stale@example.com", "hunter22"); err != nil {
    t.Fatalf("second login returned error: %v", err)
  }

  sessions, err := f.tokens.GetByUserIDs(ctx, nil, []uuid.UUID{user.ID})
  if err != nil {
    t.Fatalf("token lookup failed: %v", err)
  }
  if len(sessions) != 1 {
    t.Errorf("sessions = %d, want 1 after re-login", len(sessions))
  }
}

func TestRefreshUserRotatesToken(t *testing.T) {
  f := newAuthFixture(t)
  f.register(t, "refresh@example.com", "hunter22")
  ctx := context.Background()

  access, refresh, _, err := f.svc.LoginUser(ctx, "refresh@example.com", "hunter22")
  if err != nil {
    t.Fatalf("LoginUser returned error: %v", err)
  }

  authedCtx, err := f.svc.SetContextFromToken(ctx, access)
  if err != nil {
    t.Fatalf("SetContextFromToken returned error: %v", err)
  }
  newAccess, newRefresh, err := f.svc.RefreshUser(authedCtx)
  if err != nil {
    t.Fatalf("RefreshUser returned error: %v", err)
  }
  if newAccess == "" || newRefresh == "" {
    t.Fatal("empty rotated tokens")
  }
  if newRefresh == refresh {
    t.Error("refresh token not rotated")
  }

  // The old refresh token is gone.
  old, err := f.tokens.GetByRefreshTokens(ctx, nil, []string{refresh})
  if err != nil {
    t.Fatalf("token lookup failed: %v", err)
  }
  if len(old) != 0 {
    t.Error("old refresh token still stored after rotation")
  }
}

func TestSetContextFromTokenRejectsGarbage(t *testing.T) {
  f := newAuthFixture(t)
  _, err := f.svc.SetContextFromToken(context.Background(), "not-a-jwt")
  if !apperr.IsKind(err, apperr.KindUnauthorized) {
    t.Fatalf("SetContextFromToken = %v, want unauthorized", err)
  }
}
