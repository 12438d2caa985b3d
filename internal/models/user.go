package models

// User is the profile the backend returns for an account. Ids use the
// backend's "_id" key.
type User struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	IsPurchased bool     `json:"isPurchased"`
	ReferredBy  string   `json:"referredBy,omitempty"`
	MyRefers    []string `json:"myRefers,omitempty"`
}
