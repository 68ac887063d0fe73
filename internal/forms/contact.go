package forms

import (
	"net/url"
	"strings"

	"github.com/alextreichler/magicworld/internal/models"
)

type ContactForm struct {
	Name    string `validate:"required,max=100"`
	Email   string `validate:"required,email"`
	Message string `validate:"required,max=2000"`
}

func ParseContactForm(v url.Values) ContactForm {
	return ContactForm{
		Name:    strings.TrimSpace(v.Get("name")),
		Email:   strings.TrimSpace(v.Get("email")),
		Message: strings.TrimSpace(v.Get("message")),
	}
}

func (f ContactForm) Validate() error {
	return checkStruct(f, map[string]string{"Name": "Your name", "Email": "Email", "Message": "Message"})
}

func (f ContactForm) ContactMessage() models.ContactMessage {
	return models.ContactMessage{Name: f.Name, Email: f.Email, Message: f.Message}
}

type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func ParseLoginForm(v url.Values) LoginForm {
	return LoginForm{
		Email:    strings.TrimSpace(v.Get("email")),
		Password: v.Get("password"),
	}
}

func (f LoginForm) Validate() error {
	return checkStruct(f, map[string]string{"Email": "Email", "Password": "Password"})
}

func (f LoginForm) Credentials() models.Credentials {
	return models.Credentials{Email: f.Email, Password: f.Password}
}
