package account

import (
	"context"
	"errors"
	"testing"
)

// MockRepo implements Repository for testing
type MockRepo struct {
	CreateFunc         func(ctx context.Context, params CreateParams) (*Account, error)
	GetByIDFunc        func(ctx context.Context, id string) (*Account, error)
	ListFunc           func(ctx context.Context) ([]*Account, error)
	UpdateNicknameFunc func(ctx context.Context, id string, nickname *string) (*Account, error)
	SetHiddenFunc      func(ctx context.Context, id string, hidden bool) (*Account, error)
}

func (m *MockRepo) Create(ctx context.Context, params CreateParams) (*Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockRepo) GetByID(ctx context.Context, id string) (*Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockRepo) List(ctx context.Context) ([]*Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockRepo) UpdateNickname(ctx context.Context, id string, nickname *string) (*Account, error) {
	if m.UpdateNicknameFunc != nil {
		return m.UpdateNicknameFunc(ctx, id, nickname)
	}
	return nil, nil
}

func (m *MockRepo) SetHidden(ctx context.Context, id string, hidden bool) (*Account, error) {
	if m.SetHiddenFunc != nil {
		return m.SetHiddenFunc(ctx, id, hidden)
	}
	return nil, nil
}

func TestGetAccount_NotFound(t *testing.T) {
	svc := NewService(&MockRepo{})
	_, err := svc.GetAccount(context.Background(), "missing")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("GetAccount() error = %v, want ErrAccountNotFound", err)
	}
}

func TestUpdateNickname(t *testing.T) {
	empty := ""
	name := "Emergency Fund"

	tests := []struct {
		name     string
		nickname *string
		want     *string
	}{
		{"Set nickname", &name, &name},
		{"Empty string clears", &empty, nil},
		{"Nil clears", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *string
			repo := &MockRepo{
				GetByIDFunc: func(ctx context.Context, id string) (*Account, error) {
					return &Account{ID: id}, nil
				},
				UpdateNicknameFunc: func(ctx context.Context, id string, nickname *string) (*Account, error) {
					got = nickname
					return &Account{ID: id, Nickname: nickname}, nil
				},
			}

			svc := NewService(repo)
			if _, err := svc.UpdateNickname(context.Background(), "acc-1", tt.nickname); err != nil {
				t.Fatalf("UpdateNickname() failed: %v", err)
			}

			if (got == nil) != (tt.want == nil) {
				t.Errorf("stored nickname = %v, want %v", got, tt.want)
			} else if got != nil && *got != *tt.want {
				t.Errorf("stored nickname = %q, want %q", *got, *tt.want)
			}
		})
	}
}

func TestToggleVisibility(t *testing.T) {
	for _, hidden := range []bool{false, true} {
		repo := &MockRepo{
			GetByIDFunc: func(ctx context.Context, id string) (*Account, error) {
				return &Account{ID: id, Hidden: hidden}, nil
			},
			SetHiddenFunc: func(ctx context.Context, id string, h bool) (*Account, error) {
				if h == hidden {
					t.Errorf("SetHidden(%v) did not flip flag", h)
				}
				return &Account{ID: id, Hidden: h}, nil
			},
		}

		svc := NewService(repo)
		acct, err := svc.ToggleVisibility(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("ToggleVisibility() failed: %v", err)
		}
		if acct.Hidden == hidden {
			t.Errorf("Hidden = %v after toggle from %v", acct.Hidden, hidden)
		}
	}
}

func TestUsesWindowSync(t *testing.T) {
	tests := []struct {
		accountType string
		want        bool
	}{
		{TypeDepository, false},
		{TypeCredit, false},
		{TypeLoan, false},
		{TypeInvestment, true},
		{TypeBrokerage, true},
	}

	for _, tt := range tests {
		acct := &Account{Type: tt.accountType}
		if got := acct.UsesWindowSync(); got != tt.want {
			t.Errorf("UsesWindowSync(%s) = %v, want %v", tt.accountType, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	nick := "My Checking"
	empty := ""

	if got := (&Account{Name: "Chase 1234", Nickname: &nick}).DisplayName(); got != "My Checking" {
		t.Errorf("DisplayName() = %q, want nickname", got)
	}
	if got := (&Account{Name: "Chase 1234", Nickname: &empty}).DisplayName(); got != "Chase 1234" {
		t.Errorf("DisplayName() = %q, want provider name for empty nickname", got)
	}
	if got := (&Account{Name: "Chase 1234"}).DisplayName(); got != "Chase 1234" {
		t.Errorf("DisplayName() = %q, want provider name", got)
	}
}

func TestCreateParamsValidate(t *testing.T) {
	valid := CreateParams{ItemID: "item-1", ProviderAccountID: "ext-1", Name: "Checking", Type: TypeDepository}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() failed for valid params: %v", err)
	}

	missing := []CreateParams{
		{ProviderAccountID: "ext-1", Name: "n", Type: "t"},
		{ItemID: "i", Name: "n", Type: "t"},
		{ItemID: "i", ProviderAccountID: "ext-1", Type: "t"},
		{ItemID: "i", ProviderAccountID: "ext-1", Name: "n"},
	}
	for i, p := range missing {
		if err := p.Validate(); err == nil {
			t.Errorf("Validate() case %d expected error, got nil", i)
		}
	}
}
