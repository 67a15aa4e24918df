package authapi

import "time"

type studentRegisterRequest struct {
	USN string `json:"usn"`
	DOB string `json:"dob"`
}

type studentLoginRequest struct {
	USN string `json:"usn"`
	DOB string `json:"dob"`
}

type proctorRegisterRequest struct {
	ProctorID string `json:"proctor_id"`
	Password  string `json:"password"`
	Name      string `json:"name"`
}

type proctorLoginRequest struct {
	ProctorID string `json:"proctor_id"`
	Password  string `json:"password"`
}

type studentAuthResponse struct {
	USN       string `json:"usn"`
	SessionID string `json:"session_id"`
}

type proctorAuthResponse struct {
	ProctorID string `json:"proctor_id"`
	SessionID string `json:"session_id"`
}

type profileResponse struct {
	Role        string    `json:"role"`
	NaturalKey  string    `json:"natural_key"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
