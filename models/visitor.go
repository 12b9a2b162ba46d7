package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusOutside = "outside"
	StatusInside  = "inside"
)

type Visitor struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	PhoneNumber    string    `json:"phoneNumber" db:"phone_number"`
	Email          string    `json:"email" db:"email"`
	AadhaarNumber  string    `json:"aadhaarNumber" db:"aadhaar_number"`
	Age            int       `json:"age" db:"age"`
	Sex            string    `json:"sex" db:"sex"`
	Address        string    `json:"address" db:"address"`
	OfficialToMeet string    `json:"officialToMeet" db:"official_to_meet"`
	ReferredBy     string    `json:"referredBy" db:"referred_by"`
	Diseases       string    `json:"diseases" db:"diseases"`
	SelfieURL      string    `json:"selfieUrl" db:"selfie_url"`
	QRCodeData     string    `json:"qrCodeData" db:"qr_code_data"`
	Status         string    `json:"status" db:"status"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// RegisterVisitorForm is bound from the multipart registration form. The selfie
// file and (in dev mode) the phone number arrive alongside these fields.
type RegisterVisitorForm struct {
	Name           string `form:"name"`
	Email          string `form:"email"`
	AadhaarNumber  string `form:"aadhaarNumber"`
	Age            int    `form:"age"`
	Sex            string `form:"sex"`
	Address        string `form:"address"`
	OfficialToMeet string `form:"officialToMeet"`
	ReferredBy     string `form:"referredBy"`
	Diseases       string `form:"diseases"`
	PhoneNumber    string `form:"phone_number"`
}

// ListVisitorsQuery carries the pagination and filter options for the visitor
// listing endpoint.
type ListVisitorsQuery struct {
	Page   int
	Limit  int
	Date   *time.Time // calendar day of creation, UTC
	Status string
}
