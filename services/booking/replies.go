// File: tripbot/services/booking/replies.go
package booking

import (
	"fmt"
	"strings"
	"time"

	"tripbot/models"
)

// Reply text builders. Menus span multiple lines of one message, matching
// WhatsApp delivery.

func tripTypeMenu() string {
	return "Welcome to TripBot!\n\nWhat would you like to book?\n1. Bus\n2. Flight\n\nReply with *bus* or *flight*."
}

func idleHint() string {
	return "Nothing to cancel. Reply *hi* to start a new booking."
}

func cancelledReply() string {
	return "Booking cancelled. Reply *hi* whenever you want to start again."
}

func promptSource(tripType models.TripType) string {
	return fmt.Sprintf("Great, a %s trip! Please enter the *departure city* (e.g., Mumbai):", tripType)
}

func promptDestination() string {
	return "Now enter the *destination city* (e.g., Pune):"
}

func promptDate() string {
	return "Please enter the *departure date* in YYYY-MM-DD format:"
}

func invalidDate(now time.Time, windowDays int) string {
	today := now.Format("2006-01-02")
	last := now.AddDate(0, 0, windowDays).Format("2006-01-02")
	return fmt.Sprintf(
		"Invalid date. You can book trips from *%s* to *%s*.\nPlease enter the date as YYYY-MM-DD.",
		today, last)
}

func sameCityReply() string {
	return "Destination must differ from the departure city. Please enter another city:"
}

func offerList(offers []models.Offer) string {
	var sb strings.Builder
	sb.WriteString("Available trips:\n\n")
	for i, o := range offers {
		sb.WriteString(fmt.Sprintf("%d. %s -> %s at %s\n   Carrier: %s, Price: %.2f %s\n\n",
			i+1, o.Source, o.Destination, o.DepartureTime, orDash(o.Carrier), o.Price, o.Currency))
	}
	sb.WriteString(fmt.Sprintf("Reply with the trip number (1-%d) to select.", len(offers)))
	return sb.String()
}

func noOffersReply() string {
	return "No trips found for that date. Try a different date (YYYY-MM-DD) or reply *cancel*."
}

func invalidOfferChoice(n int) string {
	return fmt.Sprintf("Invalid choice. Reply with a number between 1 and %d.", n)
}

func promptPassenger(n int) string {
	return fmt.Sprintf("Enter passenger %d as *Name, age* (optionally *, seat*), e.g. Asha Rao, 34, 12A:", n)
}

func passengerAdded(count, max int) string {
	return fmt.Sprintf("Passenger %d added. Enter the next passenger, or reply *done* to continue (max %d).", count, max)
}

func maxPassengersReached(max int) string {
	return fmt.Sprintf("Maximum of %d passengers reached. Creating your payment...", max)
}

func needPassengerReply() string {
	return "Please add at least one passenger before continuing. " + promptPassenger(1)
}

func paymentPrompt(intent *models.PaymentIntent, passengers int) string {
	return fmt.Sprintf(
		"Booking summary: %d passenger(s), total %.2f %s.\nComplete your payment here:\n%s\n\nYou'll receive your ticket as soon as payment is confirmed.",
		passengers, intent.Amount, strings.ToUpper(intent.Currency), intent.CheckoutURL)
}

func waitingPaymentReply() string {
	return "Waiting for your payment confirmation. Your ticket will arrive here automatically once payment completes. Reply *cancel* to abandon."
}

func paymentFailedReply() string {
	return "Your payment didn't go through. Your passenger details are saved - reply *done* to try the payment again, or *cancel* to abandon."
}

func ticketDelayedReply() string {
	return "Payment received! Your ticket is slightly delayed - we'll send it here shortly."
}

func tryAgainReply() string {
	return "That took too long on our side. Please try again in a moment."
}

func historyList(tickets []models.Ticket) string {
	if len(tickets) == 0 {
		return "No bookings found for your number. Reply *hi* to make your first one!"
	}
	var sb strings.Builder
	sb.WriteString("Your recent bookings:\n\n")
	for i, t := range tickets {
		sb.WriteString(fmt.Sprintf("%d. Ref: *%s*\n   %s -> %s\n   Departure: %s\n   Passengers: %d, Price: %.2f %s\n\n",
			i+1, t.Reference, t.Source, t.Destination, t.DepartureTime, len(t.Passengers), t.Price, t.Currency))
	}
	sb.WriteString("Reply *rebook N* to book one of these routes again, or *hi* for a new booking.")
	return sb.String()
}

func rebookReply(t models.Ticket) string {
	return fmt.Sprintf("Rebooking %s -> %s by %s. %s", t.Source, t.Destination, t.TripType, promptDate())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
