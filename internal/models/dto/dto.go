// Package dto holds the JSON request and response shapes shared by the REST
// and RPC surfaces. Monetary values are rendered as strings with exactly two
// fractional digits; requests accept either strings or JSON numbers.
package dto

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CheckEmailRequest struct {
	Email string `json:"email"`
}

type CheckEmailResponse struct {
	Email  string `json:"email"`
	Exists bool   `json:"exists"`
}

type AuthResponse struct {
	Status    string       `json:"status"`
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expiresIn"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt"`
}

type ProfileResponse struct {
	User        UserResponse `json:"user"`
	PhoneNumber string       `json:"phoneNumber"`
	FoodType    string       `json:"foodType"`
	UpdatedAt   int64        `json:"updatedAt"`
}

// UpdateProfileRequest fields are optional; omitted fields are unchanged.
type UpdateProfileRequest struct {
	DisplayName     *string `json:"displayName"`
	PhoneNumber     *string `json:"phoneNumber"`
	FoodType        *string `json:"foodType"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
}

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateGroupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type AddMemberRequest struct {
	UserID string `json:"userId"`
}

type GroupResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CreatedBy   string   `json:"createdBy"`
	Members     []string `json:"members"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

type ListGroupsResponse struct {
	Groups []GroupResponse `json:"groups"`
}

type ListMembersResponse struct {
	Members []UserResponse `json:"members"`
}

// RecordExpenseRequest omits Allocation for an equal split.
type RecordExpenseRequest struct {
	Description string                     `json:"description"`
	Amount      decimal.Decimal            `json:"amount"`
	Allocation  map[string]decimal.Decimal `json:"allocation,omitempty"`
}

type ShareResponse struct {
	ID        string `json:"id"`
	ExpenseID string `json:"expenseId"`
	DebtorID  string `json:"debtorId"`
	Amount    string `json:"amount"`
	Settled   bool   `json:"settled"`
	SettledAt *int64 `json:"settledAt"`
}

type ExpenseResponse struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"groupId"`
	PayerID     string          `json:"payerId"`
	Description string          `json:"description"`
	Amount      string          `json:"amount"`
	CreatedAt   int64           `json:"createdAt"`
	UpdatedAt   int64           `json:"updatedAt"`
	Shares      []ShareResponse `json:"shares"`
}

type ListExpensesResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
}

// BalancesResponse maps user IDs to signed balances. Positive means owed money.
type BalancesResponse struct {
	GroupID  string            `json:"groupId"`
	Balances map[string]string `json:"balances"`
}

type UserSummaryResponse struct {
	UserID     string `json:"userId"`
	OwedToUser string `json:"owedToUser"`
	OwedByUser string `json:"owedByUser"`
	Net        string `json:"net"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

func FromUser(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func FromProfile(u *models.User, p *models.Profile) ProfileResponse {
	return ProfileResponse{
		User:        FromUser(u),
		PhoneNumber: p.PhoneNumber,
		FoodType:    p.FoodType,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromGroup(g *models.Group) GroupResponse {
	members := g.Members
	if members == nil {
		members = []string{}
	}
	return GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		Members:     members,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func FromGroups(groups []*models.Group) ListGroupsResponse {
	out := ListGroupsResponse{Groups: make([]GroupResponse, len(groups))}
	for i, g := range groups {
		out.Groups[i] = FromGroup(g)
	}
	return out
}

func FromShare(s models.ExpenseShare) ShareResponse {
	return ShareResponse{
		ID:        s.ID,
		ExpenseID: s.ExpenseID,
		DebtorID:  s.DebtorID,
		Amount:    money.Format(s.Amount),
		Settled:   s.Settled,
		SettledAt: s.SettledAt,
	}
}

func FromExpense(e *models.Expense) ExpenseResponse {
	shares := make([]ShareResponse, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = FromShare(s)
	}
	return ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Description: e.Description,
		Amount:      money.Format(e.Amount),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		Shares:      shares,
	}
}

func FromExpenses(expenses []*models.Expense) ListExpensesResponse {
	out := ListExpensesResponse{Expenses: make([]ExpenseResponse, len(expenses))}
	for i, e := range expenses {
		out.Expenses[i] = FromExpense(e)
	}
	return out
}

func FromBalances(groupID string, balances []models.MemberBalance) BalancesResponse {
	out := BalancesResponse{GroupID: groupID, Balances: make(map[string]string, len(balances))}
	for _, b := range balances {
		out.Balances[b.UserID] = money.Format(b.Balance)
	}
	return out
}

func FromSummary(s *models.UserSummary) UserSummaryResponse {
	return UserSummaryResponse{
		UserID:     s.UserID,
		OwedToUser: money.Format(s.OwedToUser),
		OwedByUser: money.Format(s.OwedByUser),
		Net:        money.Format(s.Net),
	}
}
