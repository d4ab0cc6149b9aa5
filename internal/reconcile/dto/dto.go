package dto

import (
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/shopspring/decimal"
)

type OutcomeStatus string

const (
	StatusCreated  OutcomeStatus = "created"
	StatusUpdated  OutcomeStatus = "updated"
	StatusSkipped  OutcomeStatus = "skipped"
	StatusFailed   OutcomeStatus = "failed"
	StatusResolved OutcomeStatus = "resolved"
)

const (
	ActionKeepLocal  = "keep_local"
	ActionKeepRemote = "keep_remote"
)

// SyncItem is one client-side snapshot. Nil fields were not sent.
type SyncItem struct {
	SKU         string           `json:"sku"`
	Name        *string          `json:"name,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	UpdatedAt   string           `json:"updatedAt,omitempty"`
}

type Resolution struct {
	SKU    string    `json:"sku"`
	Action string    `json:"action"`
	Data   *SyncItem `json:"data,omitempty"`
}

type Outcome struct {
	SKU      string           `json:"sku"`
	Status   OutcomeStatus    `json:"status"`
	Action   string           `json:"action,omitempty"`
	Conflict bool             `json:"conflict,omitempty"`
	Data     *model.StockItem `json:"data,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type BatchSyncRequest struct {
	Products []SyncItem `json:"products" binding:"required"`
}

type ResolveConflictsRequest struct {
	Resolutions []Resolution `json:"resolutions" binding:"required"`
}

type ResultsResponse struct {
	Results []Outcome `json:"results"`
}

// SyncBatchMessage is the payload of a queued offline batch.
type SyncBatchMessage struct {
	TenantID string     `json:"tenantId"`
	Products []SyncItem `json:"products"`
}
