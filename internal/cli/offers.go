package cli

import (
	"context"
	"fmt"
	"log"
)

func (a *App) LinkOffer(ctx context.Context) error {
	clientID, err := GetRequiredText(a.reader, "Client id", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	offerID, err := GetRequiredText(a.reader, "Offer id", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	co, err := a.store.AddClientToOffer(ctx, clientID, offerID)
	if err != nil {
		log.Printf("error linking offer: %s", err.Error())
		return err
	}
	fmt.Fprintf(a.out, "Linked client %s to offer %s (%s)\n", co.ClientID, co.OfferID, co.ID)
	return nil
}

func (a *App) UnlinkOffer(ctx context.Context) error {
	clientID, err := GetRequiredText(a.reader, "Client id", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	offerID, err := GetRequiredText(a.reader, "Offer id", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if err := a.store.RemoveClientFromOffer(ctx, clientID, offerID); err != nil {
		log.Printf("error unlinking offer: %s", err.Error())
		return err
	}
	fmt.Fprintln(a.out, "Unlinked")
	return nil
}

func (a *App) ListOffers(ctx context.Context) error {
	clientID, err := GetRequiredText(a.reader, "Client id", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	offers, err := a.store.ListClientOffersForClient(ctx, clientID)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	for _, co := range offers {
		fmt.Fprintf(a.out, "%s  offer %s  %s\n", co.ID, co.OfferID, co.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(a.out, "%d link(s)\n", len(offers))
	return nil
}

func (a *App) ClientsForOffer(ctx context.Context) error {
	offerID, err := GetRequiredText(a.reader, "Offer id", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	clients, err := a.store.ListClientsForOffer(ctx, offerID)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	for _, c := range clients {
		fmt.Fprintf(a.out, "%s  %s %s\n", c.ID, c.FirstName, c.LastName)
	}
	fmt.Fprintf(a.out, "%d client(s)\n", len(clients))
	return nil
}

// Sync fires the background-sync signal by hand, flushing any queued
// offline submissions.
func (a *App) Sync(ctx context.Context) error {
	if err := a.cache.HandleSync(ctx, a.config.SyncTag); err != nil {
		log.Printf("sync failed: %s", err.Error())
		return err
	}
	fmt.Fprintf(a.out, "Sync complete, %d submission(s) pending\n", a.queue.Len())
	return nil
}
