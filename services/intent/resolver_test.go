package intent

import (
	"context"
	"testing"

	"tripbot/models"
)

func TestResolveGlobalCommands(t *testing.T) {
	r := NewKeywordResolver()
	ctx := context.Background()

	cases := []struct {
		text string
		want Kind
	}{
		{"hi", KindStart},
		{"Hello", KindStart},
		{"START", KindStart},
		{"cancel", KindCancel},
		{"restart", KindCancel},
		{"stop", KindCancel},
		{"history", KindShowHistory},
		{"bookings", KindShowHistory},
	}
	// Global commands win at every stage.
	stages := []models.Stage{
		models.StageIdle,
		models.StageAwaitingSource,
		models.StageAwaitingPassengers,
		models.StageAwaitingPayment,
	}
	for _, tc := range cases {
		for _, stage := range stages {
			got := r.Resolve(ctx, tc.text, stage)
			if got.Kind != tc.want {
				t.Errorf("Resolve(%q, %s) = kind %d, want %d", tc.text, stage, got.Kind, tc.want)
			}
		}
	}
}

func TestResolveRebook(t *testing.T) {
	r := NewKeywordResolver()
	ctx := context.Background()

	got := r.Resolve(ctx, "rebook 3", models.StageIdle)
	if got.Kind != KindRebook || got.RebookIndex != 3 {
		t.Errorf("rebook 3 = %+v", got)
	}
	got = r.Resolve(ctx, "rebook", models.StageIdle)
	if got.Kind != KindRebook || got.RebookIndex != 1 {
		t.Errorf("bare rebook = %+v", got)
	}
	got = r.Resolve(ctx, "rebook zero", models.StageIdle)
	if got.Kind == KindRebook {
		t.Error("non-numeric rebook index accepted")
	}
}

func TestResolveTripType(t *testing.T) {
	r := NewKeywordResolver()
	ctx := context.Background()

	cases := []struct {
		text string
		want models.TripType
	}{
		{"1", models.TripTypeBus},
		{"bus", models.TripTypeBus},
		{"a bus please", models.TripTypeBus},
		{"2", models.TripTypeFlight},
		{"Flight", models.TripTypeFlight},
		{"plane", models.TripTypeFlight},
	}
	for _, tc := range cases {
		got := r.Resolve(ctx, tc.text, models.StageAwaitingTripType)
		if got.Kind != KindSelectTripType || got.TripType != tc.want {
			t.Errorf("Resolve(%q) = %+v, want trip type %s", tc.text, got, tc.want)
		}
	}

	got := r.Resolve(ctx, "train", models.StageAwaitingTripType)
	if got.Kind != KindUnrecognized {
		t.Errorf("train resolved to kind %d", got.Kind)
	}
}

func TestResolveCityNormalization(t *testing.T) {
	r := NewKeywordResolver()
	got := r.Resolve(context.Background(), "  new delhi ", models.StageAwaitingSource)
	if got.Kind != KindProvideText || got.Text != "New Delhi" {
		t.Errorf("got %+v, want title-cased city", got)
	}
}

func TestResolveOfferChoice(t *testing.T) {
	r := NewKeywordResolver()
	ctx := context.Background()

	got := r.Resolve(ctx, "3", models.StageAwaitingOffer)
	if got.Kind != KindSelectOffer || got.OfferChoice != 3 {
		t.Errorf("got %+v", got)
	}
	got = r.Resolve(ctx, "the third one", models.StageAwaitingOffer)
	if got.Kind != KindUnrecognized {
		t.Errorf("non-numeric choice resolved to kind %d", got.Kind)
	}
}

func TestResolvePassenger(t *testing.T) {
	r := NewKeywordResolver()
	ctx := context.Background()

	got := r.Resolve(ctx, "asha rao, 34, 12a", models.StageAwaitingPassengers)
	if got.Kind != KindProvidePassenger {
		t.Fatalf("got kind %d", got.Kind)
	}
	p := got.Passenger
	if p.Name != "Asha Rao" || p.Age != 34 || p.Seat != "12A" {
		t.Errorf("passenger = %+v", p)
	}

	got = r.Resolve(ctx, "Ravi Kumar, 28", models.StageAwaitingPassengers)
	if got.Kind != KindProvidePassenger || got.Passenger.Seat != "" {
		t.Errorf("two-field passenger = %+v", got)
	}

	for _, text := range []string{"Ravi Kumar", "Ravi, abc", ", 30", "a, 0", "a, -3"} {
		got = r.Resolve(ctx, text, models.StageAwaitingPassengers)
		if got.Kind == KindProvidePassenger {
			t.Errorf("malformed passenger %q accepted", text)
		}
	}

	got = r.Resolve(ctx, "done", models.StageAwaitingPassengers)
	if got.Kind != KindConfirm {
		t.Errorf("done at passengers = kind %d", got.Kind)
	}
}

func TestResolveEmptyText(t *testing.T) {
	r := NewKeywordResolver()
	ctx := context.Background()
	for _, stage := range []models.Stage{
		models.StageAwaitingSource,
		models.StageAwaitingDestination,
		models.StageAwaitingDate,
	} {
		got := r.Resolve(ctx, "   ", stage)
		if got.Kind != KindUnrecognized {
			t.Errorf("blank input at %s = kind %d", stage, got.Kind)
		}
	}
}
