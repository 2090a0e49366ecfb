package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/chronos-erp/flowledger/internal/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Currency:  a.Currency,
		Balance:   a.Balance,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps an account listing.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID            string          `json:"id"`
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason,omitempty"`
	Overdraft     bool            `json:"overdraft,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:            t.ID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        t.Amount,
		Reason:        t.Reason,
		Overdraft:     t.Overdraft,
		OccurredAt:    t.OccurredAt,
		CreatedAt:     t.CreatedAt,
	}
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []*domain.Transfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// ListTransfersResponse wraps a transfer listing.
type ListTransfersResponse struct {
	Transfers []*TransferResponse `json:"transfers"`
	Total     int64               `json:"total"`
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"account_id"`
	Kind       string          `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	OccurredAt time.Time       `json:"occurred_at"`
	Concept    string          `json:"concept,omitempty"`
	SourceRef  string          `json:"source_ref,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:         e.ID,
		AccountID:  e.AccountID,
		Kind:       string(e.Kind),
		Amount:     e.Amount,
		Currency:   e.Currency,
		OccurredAt: e.OccurredAt,
		Concept:    e.Concept,
		SourceRef:  e.SourceRef,
		CreatedAt:  e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ListEntriesResponse wraps an entry listing.
type ListEntriesResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Total   int64            `json:"total"`
}

// SaleResponse represents a sale in API responses.
type SaleResponse struct {
	ID           string          `json:"id"`
	Folio        string          `json:"folio"`
	ClientID     string          `json:"client_id"`
	ClientName   string          `json:"client_name"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	FreightTotal decimal.Decimal `json:"freight_total"`
	MarginTotal  decimal.Decimal `json:"margin_total"`
	Total        decimal.Decimal `json:"total"`
	Currency     string          `json:"currency"`
	Status       string          `json:"status"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	DebtID       string          `json:"debt_id,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SaleFromDomain converts domain sale to response.
func SaleFromDomain(s *domain.Sale) *SaleResponse {
	return &SaleResponse{
		ID:           s.ID,
		Folio:        s.Folio,
		ClientID:     s.ClientID,
		ClientName:   s.ClientName,
		Subtotal:     s.Subtotal,
		FreightTotal: s.FreightTotal,
		MarginTotal:  s.MarginTotal,
		Total:        s.Total,
		Currency:     s.Currency,
		Status:       string(s.Status),
		PaidAmount:   s.PaidAmount,
		Outstanding:  s.Outstanding(),
		DebtID:       s.DebtID,
		OccurredAt:   s.OccurredAt,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// SalesFromDomain converts domain sales to responses.
func SalesFromDomain(sales []*domain.Sale) []*SaleResponse {
	result := make([]*SaleResponse, len(sales))
	for i, s := range sales {
		result[i] = SaleFromDomain(s)
	}
	return result
}

// ListSalesResponse wraps a sale listing.
type ListSalesResponse struct {
	Sales []*SaleResponse `json:"sales"`
	Total int64           `json:"total"`
}

// DebtResponse represents a debt in API responses.
type DebtResponse struct {
	ID         string          `json:"id"`
	ClientID   string          `json:"client_id"`
	ClientName string          `json:"client_name"`
	SaleID     string          `json:"sale_id"`
	SaleFolio  string          `json:"sale_folio"`
	Original   decimal.Decimal `json:"original"`
	Paid       decimal.Decimal `json:"paid"`
	Remaining  decimal.Decimal `json:"remaining"`
	Settled    bool            `json:"settled"`
	Voided     bool            `json:"voided"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// DebtFromDomain converts domain debt to response.
func DebtFromDomain(d *domain.Debt) *DebtResponse {
	return &DebtResponse{
		ID:         d.ID,
		ClientID:   d.ClientID,
		ClientName: d.ClientName,
		SaleID:     d.SaleID,
		SaleFolio:  d.SaleFolio,
		Original:   d.Original,
		Paid:       d.Paid,
		Remaining:  d.Remaining,
		Settled:    d.Settled,
		Voided:     d.Voided,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// DebtsFromDomain converts domain debts to responses.
func DebtsFromDomain(debts []*domain.Debt) []*DebtResponse {
	result := make([]*DebtResponse, len(debts))
	for i, d := range debts {
		result[i] = DebtFromDomain(d)
	}
	return result
}

// ListDebtsResponse wraps a debt listing.
type ListDebtsResponse struct {
	Debts []*DebtResponse `json:"debts"`
	Total int64           `json:"total"`
}

// ClientResponse represents a client in API responses.
type ClientResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	TotalPurchased decimal.Decimal `json:"total_purchased"`
	DebtTotal      decimal.Decimal `json:"debt_total"`
	SalesCount     int             `json:"sales_count"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ClientFromDomain converts domain client to response.
func ClientFromDomain(c *domain.Client) *ClientResponse {
	return &ClientResponse{
		ID:             c.ID,
		Name:           c.Name,
		TotalPurchased: c.TotalPurchased,
		DebtTotal:      c.DebtTotal,
		SalesCount:     c.SalesCount,
		Active:         c.Active,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// ClientsFromDomain converts domain clients to responses.
func ClientsFromDomain(clients []*domain.Client) []*ClientResponse {
	result := make([]*ClientResponse, len(clients))
	for i, c := range clients {
		result[i] = ClientFromDomain(c)
	}
	return result
}

// ListClientsResponse wraps a client listing.
type ListClientsResponse struct {
	Clients []*ClientResponse `json:"clients"`
	Total   int64             `json:"total"`
}

// JobResponse represents a migration job summary in API responses.
type JobResponse struct {
	ID         string                `json:"id"`
	Mission    string                `json:"mission"`
	SourceID   string                `json:"source_id"`
	Processed  int                   `json:"processed_rows"`
	Skipped    int                   `json:"skipped_rows"`
	Errored    int                   `json:"errored_rows"`
	Committed  int                   `json:"committed_docs"`
	Warnings   []domain.ParseWarning `json:"warnings,omitempty"`
	Status     string                `json:"status"`
	Error      string                `json:"error,omitempty"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
}

// JobFromDomain converts a domain job summary to response.
func JobFromDomain(j *domain.MigrationJob) *JobResponse {
	return &JobResponse{
		ID:         j.ID,
		Mission:    j.Mission,
		SourceID:   j.SourceID,
		Processed:  j.Processed,
		Skipped:    j.Skipped,
		Errored:    j.Errored,
		Committed:  j.Committed,
		Warnings:   j.Warnings,
		Status:     string(j.Status),
		Error:      j.Error,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
	}
}

// JobsFromDomain converts domain job summaries to responses.
func JobsFromDomain(jobs []*domain.MigrationJob) []*JobResponse {
	result := make([]*JobResponse, len(jobs))
	for i, j := range jobs {
		result[i] = JobFromDomain(j)
	}
	return result
}

// ListJobsResponse wraps a job listing.
type ListJobsResponse struct {
	Jobs  []*JobResponse `json:"jobs"`
	Total int64          `json:"total"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
