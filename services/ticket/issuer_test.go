package ticket

import (
	"bytes"
	"context"
	"testing"

	"tripbot/models"
)

func paidSession() *models.Session {
	sess := models.NewSession("whatsapp:+911234567890")
	sess.Stage = models.StageAwaitingPayment
	sess.TripType = models.TripTypeBus
	sess.Source = "Mumbai"
	sess.Destination = "Pune"
	sess.Date = "2026-03-15"
	sess.LastOffers = []models.Offer{{
		OfferID:       "BUS-001",
		TripType:      models.TripTypeBus,
		Source:        "Mumbai",
		Destination:   "Pune",
		DepartureTime: "2026-03-15 08:00",
		Carrier:       "Shivneri Travels",
		Price:         450,
		Currency:      "INR",
	}}
	sess.SelectedOfferID = "BUS-001"
	sess.Passengers = []models.Passenger{
		{Name: "Asha Rao", Age: 34, Seat: "12A"},
		{Name: "Ravi Kumar", Age: 28},
	}
	sess.PendingPaymentID = "pi_3OqXYZabcdef12345"
	return sess
}

func TestIssueBuildsTicketFromSessionSnapshot(t *testing.T) {
	issuer := NewIssuer()
	tk, artifact, err := issuer.Issue(context.Background(), paidSession())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if tk.TicketID != "TKT-BCDEF12345" {
		t.Errorf("ticket id = %s", tk.TicketID)
	}
	if tk.Reference != "TB-BCDEF12345" {
		t.Errorf("reference = %s", tk.Reference)
	}
	if tk.Source != "Mumbai" || tk.Destination != "Pune" || tk.Carrier != "Shivneri Travels" {
		t.Errorf("route snapshot = %+v", tk)
	}
	if tk.Price != 900 {
		t.Errorf("price = %.2f, want per-seat price times passengers", tk.Price)
	}
	if len(tk.Passengers) != 2 {
		t.Fatalf("passengers = %d", len(tk.Passengers))
	}
	for _, p := range tk.Passengers {
		if p.ID == "" {
			t.Error("passenger missing generated id")
		}
	}

	if len(artifact) == 0 || !bytes.HasPrefix(artifact, []byte("%PDF")) {
		t.Error("artifact is not a PDF")
	}
}

func TestIssueDeterministicReferencePerPayment(t *testing.T) {
	issuer := NewIssuer()
	first, _, err := issuer.Issue(context.Background(), paidSession())
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := issuer.Issue(context.Background(), paidSession())
	if err != nil {
		t.Fatal(err)
	}
	if first.Reference != second.Reference || first.TicketID != second.TicketID {
		t.Errorf("references differ for same payment: %s vs %s", first.Reference, second.Reference)
	}
}

func TestIssueRejectsIncompleteSession(t *testing.T) {
	issuer := NewIssuer()
	ctx := context.Background()

	sess := paidSession()
	sess.SelectedOfferID = "BUS-GONE"
	if _, _, err := issuer.Issue(ctx, sess); err == nil {
		t.Error("issued without a resolvable offer")
	}

	sess = paidSession()
	sess.Passengers = nil
	if _, _, err := issuer.Issue(ctx, sess); err == nil {
		t.Error("issued without passengers")
	}

	sess = paidSession()
	sess.PendingPaymentID = ""
	if _, _, err := issuer.Issue(ctx, sess); err == nil {
		t.Error("issued without a payment reference")
	}
}
