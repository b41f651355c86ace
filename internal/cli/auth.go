package cli

import (
	"context"
	"log"

	"github.com/dmitrijs2005/agentdesk/internal/common"
)

func (a *App) Register(ctx context.Context) error {
	login, err := GetRequiredText(a.reader, "Enter login", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.users.Register(ctx, login, password)
	if err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	if err := a.session.SignIn(user.ID); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	a.userName = user.Login
	log.Printf("Registered and signed in as %s", user.Login)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	login, err := GetRequiredText(a.reader, "Enter login", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.users.Authenticate(ctx, login, password)
	if err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	if err := a.session.SignIn(user.ID); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	a.userName = user.Login
	log.Printf("Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.SignOut()
	a.userName = ""
	log.Printf("Logged out")
	return nil
}
