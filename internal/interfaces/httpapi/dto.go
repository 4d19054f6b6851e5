package httpapi

import (
	"time"

	"github.com/riskibarqy/paintball-league/internal/domain/navigation"
	"github.com/riskibarqy/paintball-league/internal/domain/profile"
	"github.com/riskibarqy/paintball-league/internal/usecase"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

type googleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type sendVerificationJobRequest struct {
	To     string `json:"to" validate:"required,email"`
	UserID string `json:"user_id" validate:"required"`
	Token  string `json:"token" validate:"required"`
	Link   string `json:"link" validate:"required,url"`
}

type sessionDTO struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	UserID      string `json:"userId"`
	ExpiresAt   string `json:"expiresAt"`
}

type loginResponseDTO struct {
	Session  sessionDTO `json:"session"`
	Redirect string     `json:"redirect"`
}

type registrationResponseDTO struct {
	UserID   string `json:"userId"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

type verificationStatusDTO struct {
	Verified bool   `json:"verified"`
	Redirect string `json:"redirect,omitempty"`
	Message  string `json:"message,omitempty"`
}

type redirectDTO struct {
	Redirect string `json:"redirect"`
}

type profileDTO struct {
	Name           string   `json:"name"`
	Bio            string   `json:"bio"`
	ProfilePicture string   `json:"profilePicture"`
	IsPro          bool     `json:"isPro"`
	Badges         []string `json:"badges"`
	Country        string   `json:"country"`
	Team           string   `json:"team"`
	Player         string   `json:"player"`
}

type profilePictureDTO struct {
	ProfilePicture string `json:"profilePicture"`
}

type menuItemDTO struct {
	Href         string `json:"href"`
	Label        string `json:"label"`
	Active       bool   `json:"active"`
	LabelVisible bool   `json:"labelVisible"`
	Hidden       bool   `json:"hidden"`
}

type navigationDTO struct {
	State              string        `json:"state"`
	Width              int           `json:"width"`
	Collapsed          bool          `json:"collapsed"`
	MenuOpen           bool          `json:"menuOpen"`
	ShowSidebarToggle  bool          `json:"showSidebarToggle"`
	MobileToggleLabel  string        `json:"mobileToggleLabel"`
	LogoutVisible      bool          `json:"logoutVisible"`
	LogoutLabelVisible bool          `json:"logoutLabelVisible"`
	Redirect           string        `json:"redirect,omitempty"`
	Items              []menuItemDTO `json:"items"`
}

type routeDTO struct {
	Href  string `json:"href"`
	Label string `json:"label"`
}

type tickerDTO struct {
	Items      []string  `json:"items"`
	Progress   float64   `json:"progress"`
	Offset     float64   `json:"offset"`
	Trajectory []float64 `json:"trajectory,omitempty"`
}

func sessionToDTO(s usecase.Session) sessionDTO {
	return sessionDTO{
		AccessToken: s.AccessToken,
		TokenType:   s.TokenType,
		UserID:      s.UserID,
		ExpiresAt:   s.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func profileToDTO(p profile.Profile) profileDTO {
	badges := p.Badges
	if badges == nil {
		badges = []string{}
	}
	return profileDTO{
		Name:           p.Name,
		Bio:            p.Bio,
		ProfilePicture: p.ProfilePicture,
		IsPro:          p.IsPro,
		Badges:         badges,
		Country:        p.Country,
		Team:           p.Team,
		Player:         p.Player,
	}
}

func navigationToDTO(s *navigation.Sidebar, pathname string) navigationDTO {
	view := s.View(pathname)
	items := make([]menuItemDTO, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, menuItemDTO{
			Href:         item.Href,
			Label:        item.Label,
			Active:       item.Active,
			LabelVisible: item.LabelVisible,
			Hidden:       item.Hidden,
		})
	}
	return navigationDTO{
		State:              string(view.State),
		Width:              view.Width,
		Collapsed:          s.Collapsed(),
		MenuOpen:           s.MenuOpen(),
		ShowSidebarToggle:  view.ShowSidebarToggle,
		MobileToggleLabel:  view.MobileToggleLabel,
		LogoutVisible:      view.LogoutVisible,
		LogoutLabelVisible: view.LogoutLabelVisible,
		Items:              items,
	}
}
