// Package workflow is the booking state machine. Given the thread's
// accumulated state and the latest user turn it executes the current
// node, mutates state under the store's per-thread lock, and emits the
// run's event sequence through an EventSink.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"travelagent/models"
	"travelagent/services/guardrail"
	"travelagent/services/intent"
	"travelagent/services/search"
	"travelagent/services/settlement"
	"travelagent/store"
)

// EventSink receives a run's events in order. The SSE streamer is the
// production sink; tests use an in-memory recorder.
type EventSink interface {
	Emit(ev models.Event) error
}

const welcomeMessage = "Welcome! I can book flights, hotels, and complete trips. Where would you like to go?"

// partialChunkWords is how many words accumulate between partial
// events. Partials are always prefixes of the final message.
const partialChunkWords = 6

// Options wires the engine's collaborators and limits.
type Options struct {
	Store           store.ThreadStore
	Extractor       intent.Extractor
	Flights         search.FlightSearcher
	Hotels          search.HotelSearcher
	Settlement      settlement.Client
	Logger          *zap.Logger
	Clock           func() time.Time
	SpendCeilingUSD decimal.Decimal
	SwapBufferPct   decimal.Decimal
	CallTimeout     time.Duration
}

type Engine struct {
	store        store.ThreadStore
	extractor    intent.Extractor
	flights      search.FlightSearcher
	hotels       search.HotelSearcher
	settlement   settlement.Client
	logger       *zap.Logger
	clock        func() time.Time
	spendCeiling decimal.Decimal
	swapBuffer   decimal.Decimal
	callTimeout  time.Duration
}

func New(opts Options) *Engine {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Engine{
		store:        opts.Store,
		extractor:    opts.Extractor,
		flights:      opts.Flights,
		hotels:       opts.Hotels,
		settlement:   opts.Settlement,
		logger:       opts.Logger,
		clock:        clock,
		spendCeiling: opts.SpendCeilingUSD,
		swapBuffer:   opts.SwapBufferPct,
		callTimeout:  timeout,
	}
}

// collaboratorError marks a failed external call. The turn's state
// mutation is discarded so the user can retry the same turn.
type collaboratorError struct {
	op  string
	err error
}

func (c *collaboratorError) Error() string {
	return fmt.Sprintf("%s failed: %v", c.op, c.err)
}

func (c *collaboratorError) Unwrap() error { return c.err }

// guardrailError marks a rejected booking action. State keeps the
// merged fields but the node does not advance.
type guardrailError struct {
	v guardrail.Violation
}

func (g *guardrailError) Error() string { return g.v.String() }

// Run executes one turn against one thread and streams the resulting
// events. The event sequence is always metadata, zero or more partials,
// one final, one end, regardless of how the turn went.
func (e *Engine) Run(ctx context.Context, runID, threadID, assistantID string, incoming []models.Message, sink EventSink) error {
	if err := sink.Emit(models.Event{
		Kind:        models.EventMetadata,
		RunID:       runID,
		ThreadID:    threadID,
		AssistantID: assistantID,
		Status:      models.StatusRunning,
	}); err != nil {
		return err
	}

	var reply models.Message
	var endErr error
	storeErr := e.store.Update(ctx, threadID, func(t *models.Thread) error {
		t.Messages = append(t.Messages, incoming...)
		reply, endErr = e.turn(ctx, t)
		t.Messages = append(t.Messages, reply)
		return nil
	})
	if storeErr != nil {
		e.logger.Error("thread update failed",
			zap.String("threadId", threadID), zap.Error(storeErr))
		reply = models.NewMessage(models.RoleAssistant,
			"Sorry, something went wrong on my end. Please try again.")
		endErr = storeErr
	}

	for _, prefix := range partialPrefixes(reply.Content) {
		partial := reply
		partial.Content = prefix
		if err := sink.Emit(models.Event{
			Kind:     models.EventPartial,
			RunID:    runID,
			ThreadID: threadID,
			Message:  &partial,
		}); err != nil {
			return err
		}
	}
	if err := sink.Emit(models.Event{
		Kind:     models.EventFinal,
		RunID:    runID,
		ThreadID: threadID,
		Message:  &reply,
	}); err != nil {
		return err
	}

	end := models.Event{
		Kind:     models.EventEnd,
		RunID:    runID,
		ThreadID: threadID,
		Status:   models.StatusSuccess,
	}
	if endErr != nil {
		end.Status = models.StatusError
		end.Error = endErr.Error()
	}
	return sink.Emit(end)
}

// turn advances the workflow by one user utterance. It appends nothing
// to the message history; the caller commits the returned reply. A
// non-nil error means the run must end with status error.
func (e *Engine) turn(ctx context.Context, t *models.Thread) (models.Message, error) {
	userText := strings.TrimSpace(t.LastUserText())

	// A fresh thread opened without any utterance gets the greeting;
	// the turn is not workflow input.
	if !t.HasAssistantMessage() && userText == "" {
		return models.NewMessage(models.RoleAssistant, welcomeMessage), nil
	}

	// Restart: a finished conversation starts over on the next turn.
	if t.State.Node == models.NodeDone {
		turns := t.State.TurnCount
		t.State = models.NewWorkflowState()
		t.State.TurnCount = turns
	}

	orig := t.State
	t.State.TurnCount++

	exctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	extracted, err := e.extractor.Extract(exctx, t.Messages, t.State)
	if err != nil {
		t.State = orig
		e.logger.Warn("intent extraction failed", zap.String("threadId", t.ID), zap.Error(err))
		return e.apology(), &collaboratorError{op: "intent extraction", err: err}
	}

	if dateChanged := mergeIntent(&t.State, extracted); dateChanged {
		if violations := guardrail.ValidateDates(e.clock(), t.State); len(violations) > 0 {
			// Keep the previously valid dates so later nodes never
			// see a date that failed validation.
			t.State.DepartureDate = orig.DepartureDate
			t.State.ReturnDate = orig.ReturnDate
			t.State.CheckIn = orig.CheckIn
			t.State.CheckOut = orig.CheckOut
			return models.NewMessage(models.RoleAssistant, dateProblemReply(violations)), nil
		}
	}

	for hop := 0; hop < 8; hop++ {
		var reply string
		var err error
		switch t.State.Node {
		case models.NodeParse:
			reply, err = e.handleParse(t)
		case models.NodeGather:
			reply, err = e.handleGather(t)
		case models.NodeSearchFlights:
			reply, err = e.handleSearchFlights(ctx, t, userText)
		case models.NodeSearchHotels:
			reply, err = e.handleSearchHotels(ctx, t, userText)
		case models.NodeSelectRoom:
			reply, err = e.handleSelectRoom(t, userText)
		case models.NodeSummary:
			reply, err = e.handleSummary(t)
		case models.NodeConfirm:
			reply, err = e.handleConfirm(t, userText)
		case models.NodeBook:
			reply, err = e.handleBook(ctx, t)
		default:
			err = fmt.Errorf("workflow stuck at node %s", t.State.Node)
		}

		if err != nil {
			var gr *guardrailError
			if errors.As(err, &gr) {
				return models.NewMessage(models.RoleAssistant, reply), err
			}
			t.State = orig
			e.logger.Warn("turn failed", zap.String("threadId", t.ID),
				zap.String("node", string(orig.Node)), zap.Error(err))
			return e.apology(), err
		}
		if reply != "" {
			return models.NewMessage(models.RoleAssistant, reply), nil
		}
	}
	t.State = orig
	return e.apology(), fmt.Errorf("workflow made no progress at node %s", orig.Node)
}

func (e *Engine) apology() models.Message {
	return models.NewMessage(models.RoleAssistant,
		"Sorry, I ran into a problem handling that. Nothing was changed, please try again.")
}

func dateProblemReply(violations []guardrail.Violation) string {
	var b strings.Builder
	b.WriteString("There are problems with the dates you gave me:\n")
	for _, v := range violations {
		fmt.Fprintf(&b, "- %s\n", v.String())
	}
	b.WriteString("Please give me corrected dates (YYYY-MM-DD).")
	return b.String()
}

// mergeIntent folds freshly extracted fields into the state. Merging is
// additive: a field already set is overwritten only when the new
// utterance supplies a non-empty value. Trip type only settles while
// the conversation is still being parsed or gathered, so a stray
// keyword late in the flow cannot re-route a trip mid-booking.
func mergeIntent(st *models.WorkflowState, in models.TripIntent) (dateChanged bool) {
	if in.TripType != "" && in.TripType != models.TripUnknown {
		if st.Node == models.NodeParse || st.Node == models.NodeGather {
			st.TripType = in.TripType
		}
	}
	if in.Origin != "" {
		st.Origin = in.Origin
	}
	if in.Destination != "" {
		st.Destination = in.Destination
	}
	if in.DepartureDate != "" && in.DepartureDate != st.DepartureDate {
		st.DepartureDate = in.DepartureDate
		dateChanged = true
	}
	if in.ReturnDate != "" && in.ReturnDate != st.ReturnDate {
		st.ReturnDate = in.ReturnDate
		dateChanged = true
	}
	if in.CheckIn != "" && in.CheckIn != st.CheckIn {
		st.CheckIn = in.CheckIn
		dateChanged = true
	}
	if in.CheckOut != "" && in.CheckOut != st.CheckOut {
		st.CheckOut = in.CheckOut
		dateChanged = true
	}
	if in.Guests > 0 {
		st.Guests = in.Guests
	}
	if in.Rooms > 0 {
		st.Rooms = in.Rooms
	}
	if !in.BudgetUSD.IsZero() {
		st.BudgetUSD = in.BudgetUSD
	}
	if in.Cabin != "" && st.SelectedFlight == nil {
		if cabin, ok := resolveCabin(in.Cabin); ok {
			st.Cabin = cabin
		}
	}
	return dateChanged
}

func (e *Engine) handleParse(t *models.Thread) (string, error) {
	if t.State.TripType == models.TripUnknown {
		return "What would you like to book: a flight, a hotel, or a complete trip?", nil
	}
	return "", advance(&t.State, models.NodeGather)
}

func (e *Engine) handleGather(t *models.Thread) (string, error) {
	st := &t.State
	if st.Destination == "" {
		return "Which city would you like to go to?", nil
	}
	if st.NeedsFlights() {
		if st.DepartureDate == "" {
			return "When is your departure date? (YYYY-MM-DD)", nil
		}
		if st.TripType == models.TripComplete && st.ReturnDate == "" {
			return "When is your return date? (YYYY-MM-DD)", nil
		}
	}
	if st.TripType == models.TripHotelOnly {
		if st.CheckIn == "" {
			return fmt.Sprintf("Great, %s it is. When is your check-in date? (YYYY-MM-DD)", st.Destination), nil
		}
		if st.CheckOut == "" {
			return "And when is your check-out date? (YYYY-MM-DD)", nil
		}
	}
	if st.NeedsFlights() {
		return "", advance(st, models.NodeSearchFlights)
	}
	return "", advance(st, models.NodeSearchHotels)
}

func (e *Engine) handleSearchFlights(ctx context.Context, t *models.Thread, userText string) (string, error) {
	st := &t.State
	if st.Cabin == "" {
		return "Which cabin class would you like: economy, premium economy, business, or first?", nil
	}

	if len(st.FlightOptions) == 0 {
		sctx, cancel := context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
		options, err := e.flights.SearchFlights(sctx, queryFrom(*st))
		if err != nil {
			return "", &collaboratorError{op: "flight search", err: err}
		}
		if len(options) == 0 {
			return "I couldn't find any flights for that trip. Try different dates or a higher budget.", nil
		}
		st.FlightOptions = options
		return flightListing(options), nil
	}

	idx := chooseFlight(userText, st.FlightOptions)
	if idx < 0 {
		return fmt.Sprintf("Please pick a flight by number (1-%d).", len(st.FlightOptions)), nil
	}
	selected := st.FlightOptions[idx]
	st.SelectedFlight = &selected

	// Date-sync rule: a complete trip reuses the flight dates for the
	// hotel stay instead of asking again.
	if st.TripType == models.TripComplete {
		if st.CheckIn == "" {
			st.CheckIn = st.DepartureDate
		}
		if st.CheckOut == "" {
			st.CheckOut = st.ReturnDate
		}
	}

	if st.NeedsHotel() {
		return "", advance(st, models.NodeSearchHotels)
	}
	return "", advance(st, models.NodeSummary)
}

func (e *Engine) handleSearchHotels(ctx context.Context, t *models.Thread, userText string) (string, error) {
	st := &t.State
	if len(st.HotelOptions) == 0 {
		sctx, cancel := context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
		options, err := e.hotels.SearchHotels(sctx, queryFrom(*st))
		if err != nil {
			return "", &collaboratorError{op: "hotel search", err: err}
		}
		if len(options) == 0 {
			return "I couldn't find any hotels within your budget. Try raising it or changing the dates.", nil
		}
		st.HotelOptions = options
		return hotelListing(options, nights(st.CheckIn, st.CheckOut)), nil
	}

	idx := chooseHotel(userText, st.HotelOptions)
	if idx < 0 {
		return fmt.Sprintf("Please pick a hotel by number (1-%d).", len(st.HotelOptions)), nil
	}
	selected := st.HotelOptions[idx]
	st.SelectedHotel = &selected
	st.RoomOptions = roomOptionsFor(selected)
	if err := advance(st, models.NodeSelectRoom); err != nil {
		return "", err
	}
	return roomListing(st.RoomOptions, nights(st.CheckIn, st.CheckOut)), nil
}

func (e *Engine) handleSelectRoom(t *models.Thread, userText string) (string, error) {
	st := &t.State
	if !st.NeedsHotel() {
		return "", advance(st, models.NodeSummary)
	}

	idx := chooseRoom(userText, st.RoomOptions)
	if idx < 0 {
		return fmt.Sprintf("Please pick a room by number (1-%d) or by name.", len(st.RoomOptions)), nil
	}
	selected := st.RoomOptions[idx]
	st.SelectedRoom = &selected
	return "", advance(st, models.NodeSummary)
}

func (e *Engine) handleSummary(t *models.Thread) (string, error) {
	st := &t.State
	st.TotalUSD = tripTotal(*st)
	// Settlement happens on-chain, so the USD total always converts.
	st.NeedsSwap = true

	var b strings.Builder
	b.WriteString("Here is your trip summary:\n")
	if st.SelectedFlight != nil {
		f := st.SelectedFlight
		fmt.Fprintf(&b, "- Flight: %s %s (%s), %s to %s, departing %s at %s: %s\n",
			f.Airline, f.FlightNumber, f.Cabin, st.Origin, st.Destination,
			st.DepartureDate, f.Depart, formatUSD(f.PriceUSD))
	}
	if st.SelectedRoom != nil && st.SelectedHotel != nil {
		n := nights(st.CheckIn, st.CheckOut)
		fmt.Fprintf(&b, "- Hotel: %s, %s room, %s to %s (%d nights at %s/night): %s\n",
			st.SelectedHotel.Name, st.SelectedRoom.Type, st.CheckIn, st.CheckOut,
			n, formatUSD(st.SelectedRoom.NightlyUSD),
			formatUSD(st.SelectedRoom.NightlyUSD.Mul(decimal.NewFromInt(int64(n)))))
	}
	fmt.Fprintf(&b, "Total: %s\n", formatUSD(st.TotalUSD))
	b.WriteString("Shall I book it? (yes/no)")

	if err := advance(st, models.NodeConfirm); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (e *Engine) handleConfirm(t *models.Thread, userText string) (string, error) {
	st := &t.State
	if !isAffirmative(userText) {
		return "No booking made. Reply \"yes\" to confirm, or tell me what you'd like to change.", nil
	}

	total := st.TotalUSD
	if total.IsZero() {
		total = tripTotal(*st)
		st.TotalUSD = total
	}
	settleAmount := total
	if st.NeedsSwap {
		settleAmount = guardrail.WithSwapBuffer(total, e.swapBuffer)
	}
	if v := guardrail.CheckBudget(total, st.BudgetUSD); v != nil {
		return "I can't book this. " + v.Rule + ". Adjust your choices and try again.", &guardrailError{v: *v}
	}
	if v := guardrail.CheckSpendCeiling(settleAmount, e.spendCeiling); v != nil {
		return "I can't book this. " + v.Rule + ". Pick a cheaper option and try again.", &guardrailError{v: *v}
	}
	return "", advance(st, models.NodeBook)
}

func (e *Engine) handleBook(ctx context.Context, t *models.Thread) (string, error) {
	st := &t.State
	settleAmount := st.TotalUSD
	if st.NeedsSwap {
		settleAmount = guardrail.WithSwapBuffer(st.TotalUSD, e.swapBuffer)
	}

	sctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	receipt, err := e.settlement.SubmitBooking(sctx, settlement.BookingOrder{
		Description:   describeTrip(*st),
		Destination:   st.Destination,
		AmountUSD:     st.TotalUSD,
		SwapAmountUSD: settleAmount,
	})
	if err != nil {
		return "", &collaboratorError{op: "booking settlement", err: err}
	}

	confirmationNumber := fmt.Sprintf("#%05dBR", 10000+rand.Intn(90000))
	st.Confirmation = &models.BookingConfirmation{
		ConfirmationNumber: confirmationNumber,
		BookingRef:         receipt.BookingRef,
		TxHash:             receipt.TxHash,
		Network:            receipt.Network,
		TotalUSD:           st.TotalUSD,
	}
	if err := advance(st, models.NodeDone); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Booking confirmed!\n")
	fmt.Fprintf(&b, "- Confirmation number: %s (show this at check-in)\n", confirmationNumber)
	fmt.Fprintf(&b, "- Booking reference: %s\n", receipt.BookingRef)
	fmt.Fprintf(&b, "- Total paid: %s\n", formatUSD(st.TotalUSD))
	fmt.Fprintf(&b, "- Payment: https://sepolia.basescan.org/tx/%s\n", receipt.TxHash)
	b.WriteString("Thanks for booking with us. Say anything to plan another trip.")
	return b.String(), nil
}

func describeTrip(st models.WorkflowState) string {
	parts := []string{}
	if st.SelectedFlight != nil {
		parts = append(parts, fmt.Sprintf("flight %s %s", st.SelectedFlight.Airline, st.SelectedFlight.FlightNumber))
	}
	if st.SelectedHotel != nil {
		room := ""
		if st.SelectedRoom != nil {
			room = ", " + st.SelectedRoom.Type + " room"
		}
		parts = append(parts, st.SelectedHotel.Name+room)
	}
	return strings.Join(parts, " + ")
}

func queryFrom(st models.WorkflowState) search.Query {
	guests := st.Guests
	if guests == 0 {
		guests = 1
	}
	rooms := st.Rooms
	if rooms == 0 {
		rooms = 1
	}
	return search.Query{
		Origin:        st.Origin,
		Destination:   st.Destination,
		DepartureDate: st.DepartureDate,
		ReturnDate:    st.ReturnDate,
		CheckIn:       st.CheckIn,
		CheckOut:      st.CheckOut,
		Guests:        guests,
		Rooms:         rooms,
		Cabin:         st.Cabin,
		BudgetUSD:     st.BudgetUSD,
	}
}

func flightListing(options []models.FlightOption) string {
	var b strings.Builder
	b.WriteString("Here are the flights I found:\n")
	for i, f := range options {
		fmt.Fprintf(&b, "%d. %s %s (%s), departs %s arrives %s: %s\n",
			i+1, f.Airline, f.FlightNumber, f.Cabin, f.Depart, f.Arrive, formatUSD(f.PriceUSD))
	}
	b.WriteString("Reply with a number to choose your flight.")
	return b.String()
}

func hotelListing(options []models.HotelOption, stayNights int) string {
	var b strings.Builder
	b.WriteString("Here are the hotels I found:\n")
	for i, h := range options {
		fmt.Fprintf(&b, "%d. %s %s, %s/night", i+1, h.Name, h.Rating, formatUSD(h.NightlyUSD))
		if stayNights > 0 {
			total := h.NightlyUSD.Mul(decimal.NewFromInt(int64(stayNights)))
			fmt.Fprintf(&b, " (%s for %d nights)", formatUSD(total), stayNights)
		}
		b.WriteString("\n")
	}
	b.WriteString("Reply with a number to pick a hotel.")
	return b.String()
}

func roomListing(options []models.RoomOption, stayNights int) string {
	var b strings.Builder
	b.WriteString("Which room would you like?\n")
	for i, r := range options {
		fmt.Fprintf(&b, "%d. %s (%s), %s/night", i+1, r.Type, r.Desc, formatUSD(r.NightlyUSD))
		if stayNights > 0 {
			total := r.NightlyUSD.Mul(decimal.NewFromInt(int64(stayNights)))
			fmt.Fprintf(&b, " (%s total)", formatUSD(total))
		}
		b.WriteString("\n")
	}
	b.WriteString("Reply with a number or the room name.")
	return b.String()
}

// affirmatives are the only tokens that trigger a booking. Anything
// else re-prompts; ambiguous phrasing never books.
var affirmatives = []string{
	"yes", "y", "yes please", "yep", "yeah", "confirm", "confirmed",
	"book it", "book", "go ahead", "do it", "proceed", "sure",
}

func isAffirmative(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.Trim(t, ".!?,")
	for _, a := range affirmatives {
		if t == a {
			return true
		}
	}
	return false
}

// chooseIndex parses a 1-based option number out of free text.
// Returns -1 when the text names no valid option.
func chooseIndex(text string, n int) int {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, word := range strings.Fields(strings.Trim(t, ".!?,")) {
		if idx, err := strconv.Atoi(strings.Trim(word, ".!?,#")); err == nil {
			if idx >= 1 && idx <= n {
				return idx - 1
			}
			return -1
		}
	}
	ordinals := []string{"first", "second", "third", "fourth", "fifth"}
	for i, o := range ordinals {
		if i < n && strings.Contains(t, o) {
			return i
		}
	}
	return -1
}

func chooseFlight(text string, options []models.FlightOption) int {
	if idx := chooseIndex(text, len(options)); idx >= 0 {
		return idx
	}
	t := strings.ToLower(text)
	for i, f := range options {
		if strings.Contains(t, strings.ToLower(f.Airline)) ||
			strings.Contains(t, strings.ToLower(f.FlightNumber)) {
			return i
		}
	}
	return -1
}

func chooseHotel(text string, options []models.HotelOption) int {
	if idx := chooseIndex(text, len(options)); idx >= 0 {
		return idx
	}
	t := strings.ToLower(text)
	for i, h := range options {
		if strings.Contains(t, strings.ToLower(h.Name)) {
			return i
		}
	}
	return -1
}

func chooseRoom(text string, options []models.RoomOption) int {
	if idx := chooseIndex(text, len(options)); idx >= 0 {
		return idx
	}
	t := strings.ToLower(text)
	for i, r := range options {
		if strings.Contains(t, strings.ToLower(r.Type)) {
			return i
		}
	}
	if strings.Contains(t, "suite") {
		for i, r := range options {
			if strings.Contains(strings.ToLower(r.Type), "suite") {
				return i
			}
		}
	}
	return -1
}

// partialPrefixes cuts the reply into cumulative prefixes at word
// boundaries. Every element is a strict prefix of the final text;
// short replies stream in one piece via the final event alone.
func partialPrefixes(text string) []string {
	var out []string
	inWord := false
	words := 0
	for i, r := range text {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			inWord = true
			words++
			if words > 1 && (words-1)%partialChunkWords == 0 {
				out = append(out, strings.TrimRight(text[:i], " \t\n"))
			}
		}
	}
	return out
}
