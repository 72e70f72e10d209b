// Package entity contiene los value objects del dominio.
package entity

import "errors"

// ErrMissingUID indica que se intentó construir un User sin uid.
var ErrMissingUID = errors.New("entity: user uid is required")

// User es el value object inmutable del usuario.
// Los campos no se exportan: la única forma de obtener un User es NewUser.
type User struct {
	uid   string
	email string
}

// NewUser construye un User. El uid es obligatorio; el email se acepta tal cual.
func NewUser(uid, email string) (User, error) {
	if uid == "" {
		return User{}, ErrMissingUID
	}
	return User{uid: uid, email: email}, nil
}

// UID retorna el identificador opaco del usuario.
func (u User) UID() string { return u.uid }

// Email retorna el email del usuario.
func (u User) Email() string { return u.email }

func (u User) String() string {
	return "User{uid:" + u.uid + ", email:" + u.email + "}"
}
