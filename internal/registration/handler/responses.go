package handler

import (
	"github.com/slammedialab/vercel-siteid/internal/registration"
	dErrors "github.com/slammedialab/vercel-siteid/pkg/domain-errors"
)

type registerResponse struct {
	OK         bool     `json:"ok"`
	Action     string   `json:"action,omitempty"`
	CustomerID int64    `json:"customerId,omitempty"`
	Email      string   `json:"email,omitempty"`
	SiteID     string   `json:"siteId,omitempty"`
	Password   string   `json:"password,omitempty"`
	Error      string   `json:"error,omitempty"`
	Field      string   `json:"field,omitempty"`
	Code       string   `json:"code,omitempty"`
	Missing    []string `json:"missing,omitempty"`
}

type validateResponse struct {
	Valid       bool   `json:"valid"`
	AccountName string `json:"accountName,omitempty"`
	AccountID   string `json:"accountId,omitempty"`
	Error       string `json:"error,omitempty"`
	Code        string `json:"code,omitempty"`
}

func registerSuccess(res *registration.Result) registerResponse {
	return registerResponse{
		OK:         true,
		Action:     string(res.Action),
		CustomerID: int64(res.CustomerID),
		Email:      res.Email,
		SiteID:     res.SiteID,
		Password:   res.Password,
	}
}

func registerFailure(err error) registerResponse {
	return registerResponse{
		Error: dErrors.MessageOf(err),
		Field: dErrors.FieldOf(err),
		Code:  string(dErrors.CodeOf(err)),
	}
}
