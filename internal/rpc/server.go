// Package rpc serves the ledger over the Connect protocol.
package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models/dto"
	"github.com/mmynk/splitledger/internal/service"
)

// ServiceName is the fully-qualified name of the ledger service.
const ServiceName = "splitledger.v1.LedgerService"

// Procedure paths, one per RPC.
const (
	CreateGroupProcedure   = "/" + ServiceName + "/CreateGroup"
	ListGroupsProcedure    = "/" + ServiceName + "/ListGroups"
	AddMemberProcedure     = "/" + ServiceName + "/AddMember"
	RemoveMemberProcedure  = "/" + ServiceName + "/RemoveMember"
	RecordExpenseProcedure = "/" + ServiceName + "/RecordExpense"
	ListExpensesProcedure  = "/" + ServiceName + "/ListExpenses"
	DeleteExpenseProcedure = "/" + ServiceName + "/DeleteExpense"
	SettleShareProcedure   = "/" + ServiceName + "/SettleShare"
	GetBalancesProcedure   = "/" + ServiceName + "/GetBalances"
)

// LedgerServer implements the Connect LedgerService on top of the group
// and ledger services. Callers are identified by middleware.RequireAuth.
type LedgerServer struct {
	groups *service.GroupService
	ledger *service.LedgerService
}

// NewLedgerServer creates a new LedgerServer.
func NewLedgerServer(groups *service.GroupService, ledger *service.LedgerService) *LedgerServer {
	return &LedgerServer{groups: groups, ledger: ledger}
}

func (s *LedgerServer) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[dto.GroupResponse], error) {
	group, err := s.groups.CreateGroup(ctx, middleware.GetUserID(ctx), req.Msg.Name, req.Msg.Description)
	if err != nil {
		return nil, connectError(CreateGroupProcedure, err)
	}
	return connect.NewResponse(ptr(dto.FromGroup(group))), nil
}

func (s *LedgerServer) ListGroups(ctx context.Context, _ *connect.Request[ListGroupsRequest]) (*connect.Response[dto.ListGroupsResponse], error) {
	groups, err := s.groups.ListVisibleGroups(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, connectError(ListGroupsProcedure, err)
	}
	return connect.NewResponse(ptr(dto.FromGroups(groups))), nil
}

func (s *LedgerServer) AddMember(ctx context.Context, req *connect.Request[MemberRequest]) (*connect.Response[dto.GroupResponse], error) {
	group, err := s.groups.AddMember(ctx, req.Msg.GroupID, middleware.GetUserID(ctx), req.Msg.UserID)
	if err != nil {
		return nil, connectError(AddMemberProcedure, err)
	}
	return connect.NewResponse(ptr(dto.FromGroup(group))), nil
}

func (s *LedgerServer) RemoveMember(ctx context.Context, req *connect.Request[MemberRequest]) (*connect.Response[Empty], error) {
	if err := s.groups.RemoveMember(ctx, req.Msg.GroupID, middleware.GetUserID(ctx), req.Msg.UserID); err != nil {
		return nil, connectError(RemoveMemberProcedure, err)
	}
	return connect.NewResponse(&Empty{}), nil
}

// RecordExpense records an expense paid by the caller.
func (s *LedgerServer) RecordExpense(ctx context.Context, req *connect.Request[RecordExpenseRequest]) (*connect.Response[dto.ExpenseResponse], error) {
	expense, err := s.ledger.RecordExpense(ctx, service.RecordExpenseInput{
		GroupID:     req.Msg.GroupID,
		PayerID:     middleware.GetUserID(ctx),
		Description: req.Msg.Description,
		Amount:      req.Msg.Amount,
		Allocation:  req.Msg.Allocation,
	})
	if err != nil {
		return nil, connectError(RecordExpenseProcedure, err)
	}
	return connect.NewResponse(ptr(dto.FromExpense(expense))), nil
}

func (s *LedgerServer) ListExpenses(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[dto.ListExpensesResponse], error) {
	expenses, err := s.ledger.ListExpenses(ctx, req.Msg.GroupID, middleware.GetUserID(ctx))
	if err != nil {
		return nil, connectError(ListExpensesProcedure, err)
	}
	return connect.NewResponse(ptr(dto.FromExpenses(expenses))), nil
}

func (s *LedgerServer) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[Empty], error) {
	if err := s.ledger.DeleteExpense(ctx, req.Msg.ExpenseID, middleware.GetUserID(ctx)); err != nil {
		return nil, connectError(DeleteExpenseProcedure, err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *LedgerServer) SettleShare(ctx context.Context, req *connect.Request[SettleShareRequest]) (*connect.Response[dto.ShareResponse], error) {
	share, err := s.ledger.SettleShare(ctx, req.Msg.ShareID, middleware.GetUserID(ctx))
	if err != nil {
		return nil, connectError(SettleShareProcedure, err)
	}
	return connect.NewResponse(ptr(dto.FromShare(*share))), nil
}

func (s *LedgerServer) GetBalances(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[dto.BalancesResponse], error) {
	balances, err := s.ledger.ComputeBalances(ctx, req.Msg.GroupID, middleware.GetUserID(ctx))
	if err != nil {
		return nil, connectError(GetBalancesProcedure, err)
	}
	return connect.NewResponse(ptr(dto.FromBalances(req.Msg.GroupID, balances))), nil
}

// NewHandler builds an HTTP handler that serves every LedgerService
// procedure. It returns the path to mount the handler on.
func NewHandler(svc *LedgerServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(CreateGroupProcedure, connect.NewUnaryHandler(CreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(ListGroupsProcedure, connect.NewUnaryHandler(ListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(AddMemberProcedure, connect.NewUnaryHandler(AddMemberProcedure, svc.AddMember, opts...))
	mux.Handle(RemoveMemberProcedure, connect.NewUnaryHandler(RemoveMemberProcedure, svc.RemoveMember, opts...))
	mux.Handle(RecordExpenseProcedure, connect.NewUnaryHandler(RecordExpenseProcedure, svc.RecordExpense, opts...))
	mux.Handle(ListExpensesProcedure, connect.NewUnaryHandler(ListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(DeleteExpenseProcedure, connect.NewUnaryHandler(DeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(SettleShareProcedure, connect.NewUnaryHandler(SettleShareProcedure, svc.SettleShare, opts...))
	mux.Handle(GetBalancesProcedure, connect.NewUnaryHandler(GetBalancesProcedure, svc.GetBalances, opts...))
	return "/" + ServiceName + "/", mux
}

func ptr[T any](v T) *T {
	return &v
}
