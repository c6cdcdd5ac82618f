package push

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/platewise/platewise/internal/model"
	"github.com/platewise/platewise/internal/store"
)

// Notifier fans donation events out to push subscribers: recipients hear
// about new donations, donors hear when theirs are claimed. All sends are
// best-effort; failures are logged, never surfaced to the request.
type Notifier struct {
	svc      *Service
	subs     *store.PushStore
	accounts *store.AccountStore
	logger   *slog.Logger
}

func NewNotifier(svc *Service, subs *store.PushStore, accounts *store.AccountStore, logger *slog.Logger) *Notifier {
	return &Notifier{svc: svc, subs: subs, accounts: accounts, logger: logger}
}

// DonationCreated notifies every subscribed recipient about a new donation.
func (n *Notifier) DonationCreated(d *model.Donation) {
	subs, err := n.subs.ListByRole(model.RoleUser)
	if err != nil {
		n.logger.Error("list recipient subscriptions", "error", err)
		return
	}

	payload := Payload{
		Title: "New food donation available",
		Body:  fmt.Sprintf("%s (%s) at %s", d.FoodType, d.Quantity, d.Location),
		Tag:   fmt.Sprintf("donation-%d", d.ID),
	}
	n.sendAll(subs, payload)
}

// DonationClaimed notifies the donor's devices that their donation was
// claimed, including the claimant's contact details for pickup.
func (n *Notifier) DonationClaimed(d *model.Donation) {
	if d.DonorEmail == "" || d.ClaimedBy == nil {
		return
	}

	donor, err := n.accounts.GetByEmail(d.DonorEmail)
	if err != nil {
		n.logger.Error("resolve donor for push", "error", err)
		return
	}
	if donor == nil {
		return
	}

	subs, err := n.subs.ListByAccount(donor.ID)
	if err != nil {
		n.logger.Error("list donor subscriptions", "error", err)
		return
	}

	payload := Payload{
		Title: "Your donation was claimed",
		Body:  fmt.Sprintf("%s claimed your %s. Contact %s to arrange pickup", d.ClaimedBy.Name, d.FoodType, d.ClaimedBy.Phone),
		Tag:   fmt.Sprintf("donation-%d", d.ID),
	}
	n.sendAll(subs, payload)
}

func (n *Notifier) sendAll(subs []model.PushSubscription, payload Payload) {
	for i := range subs {
		sub := &subs[i]
		err := n.svc.Send(sub, payload)
		if errors.Is(err, ErrExpired) {
			// The push service says this endpoint is gone; drop it.
			if err := n.subs.DeleteByEndpoint(sub.Endpoint); err != nil {
				n.logger.Error("prune expired subscription", "error", err)
			}
			continue
		}
		if err != nil {
			n.logger.Warn("send push", "endpoint", sub.Endpoint, "error", err)
		}
	}
}
