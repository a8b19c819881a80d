package domain

import "time"

type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	ProfileImage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the public view of a User.
type Profile struct {
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	ProfileImage string `json:"profileImage"`
}

func (u User) Profile(defaultImage string) Profile {
	image := u.ProfileImage
	if image == "" {
		image = defaultImage
	}
	return Profile{
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		ProfileImage: image,
	}
}
