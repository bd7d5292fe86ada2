package models

import (
	"time"

	ticketmodels "raffle-tool-backend/internal/features/ticket/models"
)

// Payment methods accepted at finalize time. Transfer requires a proof
// image; cash carries none.
const (
	MethodTransfer = "transfer"
	MethodCash     = "cash"
)

// ValidMethod reports whether m is an accepted payment method.
func ValidMethod(m string) bool {
	return m == MethodTransfer || m == MethodCash
}

// ProofAsset is the raw uploaded transfer-proof image.
type ProofAsset struct {
	Data        []byte
	ContentType string
}

// FinalizeInput is one completePayment request. ParticipantID is set on
// the pay-reserved flow; direct purchases leave it empty and supply
// Buyer instead.
type FinalizeInput struct {
	Numbers       []string
	Buyer         ticketmodels.BuyerInfo
	ParticipantID string
	PaymentMethod string
	Proof         *ProofAsset
	FraudNote     string
}

// ResultStatus tags a FinalizeResult so callers can branch on "numbers
// became unavailable" distinctly from "payment processing failed".
type ResultStatus string

const (
	ResultSuccess  ResultStatus = "success"
	ResultConflict ResultStatus = "conflict"
	ResultError    ResultStatus = "error"
)

// FinalizeResult is the typed outcome of one finalize call. ErrorCode
// carries the taxonomy code on the error branch so the HTTP layer can
// map it to a status.
type FinalizeResult struct {
	Status          ResultStatus `json:"status"`
	Receipt         *SaleReceipt `json:"receipt,omitempty"`
	ConflictNumbers []string     `json:"conflict_numbers,omitempty"`
	Message         string       `json:"message,omitempty"`
	ErrorCode       string       `json:"error_code,omitempty"`
}

// SaleReceipt is the finalized-sale payload handed to the voucher
// collaborator.
type SaleReceipt struct {
	RaffleID        string    `json:"raffle_id"`
	SellerID        string    `json:"seller_id"`
	ParticipantID   string    `json:"participant_id"`
	BuyerName       string    `json:"buyer_name"`
	BuyerPhone      string    `json:"buyer_phone"`
	BuyerCedula     string    `json:"buyer_cedula,omitempty"`
	Numbers         []string  `json:"numbers"`
	PaymentMethod   string    `json:"payment_method"`
	PaymentProofRef string    `json:"payment_proof_ref,omitempty"`
	SoldAt          time.Time `json:"sold_at"`
}

// FraudReport is the suspicious-activity side record. At most one
// pending report exists per (participant, raffle, seller); repeat
// submissions update the pending row in place.
type FraudReport struct {
	ID            string    `json:"id"`
	ParticipantID string    `json:"participant_id"`
	RaffleID      string    `json:"raffle_id"`
	SellerID      string    `json:"seller_id"`
	Message       string    `json:"message"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
