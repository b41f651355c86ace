package cli

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/dmitrijs2005/agentdesk/internal/store"
)

func (a *App) AddClient(ctx context.Context) error {
	firstName, err := GetRequiredText(a.reader, "First name", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	lastName, err := GetRequiredText(a.reader, "Last name", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	email, err := GetSimpleText(a.reader, "Email (optional)", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	phone, err := GetSimpleText(a.reader, "Phone (optional)", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	clientType, err := GetSimpleText(a.reader, "Type (buyer/seller)", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	locations, err := GetCommaSeparated(a.reader, "Locations (comma-separated, optional)", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	priceMin, err := a.getOptionalPrice("Minimum price (optional)")
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	priceMax, err := a.getOptionalPrice("Maximum price (optional)")
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	notes, err := GetMultiline(a.reader, "Notes (optional)", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	c, err := a.store.CreateClient(ctx, store.NewClient{
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Phone:      phone,
		Notes:      notes,
		ClientType: store.ClientType(clientType),
		Locations:  locations,
		PriceMin:   priceMin,
		PriceMax:   priceMax,
	})
	if err != nil {
		log.Printf("error saving client: %s", err.Error())
		return err
	}

	fmt.Fprintf(a.out, "Created client %s %s (%s)\n", c.FirstName, c.LastName, c.ID)
	return nil
}

func (a *App) getOptionalPrice(prompt string) (*float64, error) {
	s, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (a *App) ListClients(ctx context.Context, clientType string) error {
	clients, err := a.store.ListClients(ctx, store.ClientType(clientType))
	if err != nil {
		log.Println(err.Error())
		return err
	}

	for _, c := range clients {
		fmt.Fprintf(a.out, "%s  %s %s  [%s]\n", c.ID, c.FirstName, c.LastName, c.ClientType)
	}
	fmt.Fprintf(a.out, "%d client(s)\n", len(clients))
	return nil
}

func (a *App) ShowClient(ctx context.Context) error {
	id, err := GetRequiredText(a.reader, "Client id", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	c, err := a.store.GetClient(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	if c == nil {
		fmt.Fprintln(a.out, "No such client")
		return nil
	}

	fmt.Fprintf(a.out, "%s %s [%s]\n", c.FirstName, c.LastName, c.ClientType)
	if c.Email != "" {
		fmt.Fprintf(a.out, "  email: %s\n", c.Email)
	}
	if c.Phone != "" {
		fmt.Fprintf(a.out, "  phone: %s\n", c.Phone)
	}
	if len(c.Locations) > 0 {
		fmt.Fprintf(a.out, "  locations: %v\n", c.Locations)
	}
	if c.PriceMin != nil {
		fmt.Fprintf(a.out, "  price min: %.0f\n", *c.PriceMin)
	}
	if c.PriceMax != nil {
		fmt.Fprintf(a.out, "  price max: %.0f\n", *c.PriceMax)
	}
	if c.Notes != "" {
		fmt.Fprintf(a.out, "  notes: %s\n", c.Notes)
	}
	fmt.Fprintf(a.out, "  created: %s  updated: %s\n", c.CreatedAt.Format("2006-01-02 15:04"), c.UpdatedAt.Format("2006-01-02 15:04"))
	return nil
}

func (a *App) EditClient(ctx context.Context) error {
	id, err := GetRequiredText(a.reader, "Client id", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	var patch store.ClientPatch
	phone, err := GetSimpleText(a.reader, "New phone (blank to keep)", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if phone != "" {
		patch.Phone = store.OptOf(phone)
	}
	notes, err := GetMultiline(a.reader, "New notes (blank to keep)", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if notes != "" {
		patch.Notes = store.OptOf(notes)
	}

	c, err := a.store.UpdateClient(ctx, id, patch)
	if err != nil {
		log.Printf("error updating client: %s", err.Error())
		return err
	}
	fmt.Fprintf(a.out, "Updated %s %s\n", c.FirstName, c.LastName)
	return nil
}

func (a *App) DeleteClient(ctx context.Context) error {
	id, err := GetRequiredText(a.reader, "Client id", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if err := a.store.DeleteClient(ctx, id); err != nil {
		log.Printf("error deleting client: %s", err.Error())
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}
