package rpc

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/models/dto"
)

// Client is a LedgerService client speaking the Connect protocol with JSON.
type Client struct {
	createGroup   *connect.Client[CreateGroupRequest, dto.GroupResponse]
	listGroups    *connect.Client[ListGroupsRequest, dto.ListGroupsResponse]
	addMember     *connect.Client[MemberRequest, dto.GroupResponse]
	removeMember  *connect.Client[MemberRequest, Empty]
	recordExpense *connect.Client[RecordExpenseRequest, dto.ExpenseResponse]
	listExpenses  *connect.Client[GroupRequest, dto.ListExpensesResponse]
	deleteExpense *connect.Client[DeleteExpenseRequest, Empty]
	settleShare   *connect.Client[SettleShareRequest, dto.ShareResponse]
	getBalances   *connect.Client[GroupRequest, dto.BalancesResponse]
}

// NewClient constructs a client for the LedgerService at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &Client{
		createGroup:   connect.NewClient[CreateGroupRequest, dto.GroupResponse](httpClient, baseURL+CreateGroupProcedure, opts...),
		listGroups:    connect.NewClient[ListGroupsRequest, dto.ListGroupsResponse](httpClient, baseURL+ListGroupsProcedure, opts...),
		addMember:     connect.NewClient[MemberRequest, dto.GroupResponse](httpClient, baseURL+AddMemberProcedure, opts...),
		removeMember:  connect.NewClient[MemberRequest, Empty](httpClient, baseURL+RemoveMemberProcedure, opts...),
		recordExpense: connect.NewClient[RecordExpenseRequest, dto.ExpenseResponse](httpClient, baseURL+RecordExpenseProcedure, opts...),
		listExpenses:  connect.NewClient[GroupRequest, dto.ListExpensesResponse](httpClient, baseURL+ListExpensesProcedure, opts...),
		deleteExpense: connect.NewClient[DeleteExpenseRequest, Empty](httpClient, baseURL+DeleteExpenseProcedure, opts...),
		settleShare:   connect.NewClient[SettleShareRequest, dto.ShareResponse](httpClient, baseURL+SettleShareProcedure, opts...),
		getBalances:   connect.NewClient[GroupRequest, dto.BalancesResponse](httpClient, baseURL+GetBalancesProcedure, opts...),
	}
}

func (c *Client) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[dto.GroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *Client) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[dto.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *Client) AddMember(ctx context.Context, req *connect.Request[MemberRequest]) (*connect.Response[dto.GroupResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *Client) RemoveMember(ctx context.Context, req *connect.Request[MemberRequest]) (*connect.Response[Empty], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *Client) RecordExpense(ctx context.Context, req *connect.Request[RecordExpenseRequest]) (*connect.Response[dto.ExpenseResponse], error) {
	return c.recordExpense.CallUnary(ctx, req)
}

func (c *Client) ListExpenses(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[dto.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *Client) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[Empty], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *Client) SettleShare(ctx context.Context, req *connect.Request[SettleShareRequest]) (*connect.Response[dto.ShareResponse], error) {
	return c.settleShare.CallUnary(ctx, req)
}

func (c *Client) GetBalances(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[dto.BalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}
