package handler

import "github.com/slammedialab/vercel-siteid/internal/registration"

type registerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	SiteID    string `json:"siteId"`
	TitleRole string `json:"titleRole"`
	Password  string `json:"password" sanitize:"-"`
	Update    bool   `json:"update"`
}

func (r *registerRequest) toDomain() registration.Request {
	return registration.Request{
		Email:      r.Email,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Phone:      r.Phone,
		SiteID:     r.SiteID,
		TitleRole:  r.TitleRole,
		Password:   r.Password,
		UpdateOnly: r.Update,
	}
}
