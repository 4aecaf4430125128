package models

import "github.com/shopspring/decimal"

// TripType classifies what the user is booking.
type TripType string

const (
	TripUnknown    TripType = "unknown"
	TripFlightOnly TripType = "flight_only"
	TripHotelOnly  TripType = "hotel_only"
	TripComplete   TripType = "complete_trip"
)

// Node names a step in the booking workflow.
type Node string

const (
	NodeParse         Node = "parse"
	NodeGather        Node = "gather"
	NodeSearchFlights Node = "search_flights"
	NodeSearchHotels  Node = "search_hotels"
	NodeSelectRoom    Node = "select_room"
	NodeSummary       Node = "summary"
	NodeConfirm       Node = "confirm"
	NodeBook          Node = "book"
	NodeDone          Node = "done"
)

// CabinClass is the closed set of flight cabins. The empty value means
// the user has not chosen one yet.
type CabinClass string

const (
	CabinEconomy        CabinClass = "economy"
	CabinPremiumEconomy CabinClass = "premium_economy"
	CabinBusiness       CabinClass = "business"
	CabinFirst          CabinClass = "first"
)

// FlightOption is one candidate flight returned by the search
// collaborator.
type FlightOption struct {
	Airline      string          `json:"airline"`
	FlightNumber string          `json:"flight_number"`
	Depart       string          `json:"depart"`
	Arrive       string          `json:"arrive"`
	Cabin        CabinClass      `json:"cabin"`
	PriceUSD     decimal.Decimal `json:"price_usd"`
}

// HotelOption is one candidate hotel returned by the search
// collaborator. NightlyUSD is the per-night rate.
type HotelOption struct {
	Name       string          `json:"name"`
	Rating     string          `json:"rating"`
	NightlyUSD decimal.Decimal `json:"nightly_usd"`
}

// RoomOption is a room tier derived from the selected hotel's base
// rate.
type RoomOption struct {
	Type       string          `json:"type"`
	Desc       string          `json:"desc"`
	NightlyUSD decimal.Decimal `json:"nightly_usd"`
}

// BookingConfirmation is the settled booking attached to a finished
// workflow.
type BookingConfirmation struct {
	ConfirmationNumber string          `json:"confirmation_number"`
	BookingRef         string          `json:"booking_ref"`
	TxHash             string          `json:"tx_hash"`
	Network            string          `json:"network"`
	TotalUSD           decimal.Decimal `json:"total_usd"`
}

// WorkflowState accumulates everything the workflow has learned about
// the trip. Dates are canonical YYYY-MM-DD strings. A zero BudgetUSD
// means no budget was supplied.
type WorkflowState struct {
	TripType TripType `json:"trip_type"`

	Origin        string `json:"origin,omitempty"`
	Destination   string `json:"destination,omitempty"`
	DepartureDate string `json:"departure_date,omitempty"`
	ReturnDate    string `json:"return_date,omitempty"`
	CheckIn       string `json:"check_in,omitempty"`
	CheckOut      string `json:"check_out,omitempty"`
	Guests        int    `json:"guests,omitempty"`
	Rooms         int    `json:"rooms,omitempty"`

	BudgetUSD decimal.Decimal `json:"budget_usd"`
	Cabin     CabinClass      `json:"cabin_class,omitempty"`

	FlightOptions []FlightOption `json:"flight_options,omitempty"`
	HotelOptions  []HotelOption  `json:"hotel_options,omitempty"`
	RoomOptions   []RoomOption   `json:"room_options,omitempty"`

	SelectedFlight *FlightOption `json:"selected_flight,omitempty"`
	SelectedHotel  *HotelOption  `json:"selected_hotel,omitempty"`
	SelectedRoom   *RoomOption   `json:"selected_room,omitempty"`

	NeedsSwap bool            `json:"needs_swap,omitempty"`
	TotalUSD  decimal.Decimal `json:"total_usd"`

	Confirmation *BookingConfirmation `json:"confirmation,omitempty"`

	Node      Node `json:"node"`
	TurnCount int  `json:"turn_count"`
}

// NewWorkflowState returns the initial state for a fresh conversation.
func NewWorkflowState() WorkflowState {
	return WorkflowState{TripType: TripUnknown, Node: NodeParse}
}

// NeedsFlights reports whether the trip includes a flight leg.
func (s WorkflowState) NeedsFlights() bool {
	return s.TripType == TripFlightOnly || s.TripType == TripComplete
}

// NeedsHotel reports whether the trip includes a hotel stay.
func (s WorkflowState) NeedsHotel() bool {
	return s.TripType == TripHotelOnly || s.TripType == TripComplete
}

// TripIntent is the structured output of the intent-extraction
// collaborator. Empty fields mean the utterance said nothing about
// them; the engine merges non-empty values additively into the state.
type TripIntent struct {
	TripType      TripType        `json:"trip_type,omitempty"`
	Origin        string          `json:"origin,omitempty"`
	Destination   string          `json:"destination,omitempty"`
	DepartureDate string          `json:"departure_date,omitempty"`
	ReturnDate    string          `json:"return_date,omitempty"`
	CheckIn       string          `json:"check_in,omitempty"`
	CheckOut      string          `json:"check_out,omitempty"`
	Guests        int             `json:"guests,omitempty"`
	Rooms         int             `json:"rooms,omitempty"`
	BudgetUSD     decimal.Decimal `json:"budget_usd"`
	Cabin         string          `json:"cabin_class,omitempty"`
}
