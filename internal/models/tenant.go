package models

// Checkout selects a billing plan during registration.
type Checkout struct {
	PlanID   string `json:"planId"`
	Interval string `json:"interval"`
}

// RegistrationRequest is sent to the registration service.
type RegistrationRequest struct {
	Email        string    `json:"email"`
	TenantName   string    `json:"tenantName"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	CaptchaToken string    `json:"captchaToken,omitempty"`
	Checkout     *Checkout `json:"checkout,omitempty"`
}

// RegisteredUser is the user created by a successful registration.
type RegisteredUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// RegistrationResponse is the success payload of a registration.
type RegistrationResponse struct {
	User        RegisteredUser `json:"user"`
	TenantID    string         `json:"tenantId"`
	CheckoutURL string         `json:"checkoutUrl,omitempty"`
}

// RegistrationError is the error payload of a failed registration.
type RegistrationError struct {
	Status string `json:"status"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
