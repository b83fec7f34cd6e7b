package service

// User-facing bot replies. Every terminal conversation path sends exactly
// one of these.
const (
	msgGreeting = "Hi! I'm the class booking assistant. " +
		"When there is free time on the schedule, write \"book me\" and I will offer the available dates. " +
		"To drop a booking write \"unsubscribe me\" or \"cancel booking\". " +
		"Now please introduce yourself so I know who I'm booking: pick your group."
	msgNoActiveGroups    = "I can't find any active groups. Please contact the administrator."
	msgGroupUnknown      = "I can't find that group. The conversation is over, start again with /start."
	msgGroupFailed       = "Something went wrong. Try again with /start."
	msgAskLastName       = "Now please send your last name."
	msgLastNameRetry     = "I didn't quite get that. Just send your last name."
	msgOnboarded         = "Thanks, you're all set. Your last name is %s and your group is %s, correct? " +
		"If not, use /start to change your details. If everything is right, try booking: write \"book me\"."
	msgNeedOnboarding    = "I don't know you yet. Send /start to introduce yourself first."
	msgSignupClosed      = "Signup is not open for your group right now."
	msgAskPlace          = "Where would you like to go? Pick a place."
	msgNoPlaces          = "There is nothing available to book right now."
	msgUnknownPlace      = "I don't know that place. Pick one from the list."
	msgAskDate           = "Which date? These are still free:"
	msgNothingAvailable  = "There are no free classes to book right now."
	msgBadDate           = "That doesn't look like a date I can book. The conversation is over, try again with \"book me\"."
	msgAskTime           = "Which time?"
	msgBadTime           = "That doesn't look like a valid time. The conversation is over, try again with \"book me\"."
	msgSlotGone          = "That class is no longer on the schedule. Try again with \"book me\"."
	msgBooked            = "Done! You are booked: %s, %s at %s."
	msgNoBookings        = "You have no upcoming bookings."
	msgAskUnsubscribe    = "Which booking should I cancel?"
	msgUnknownBooking    = "I couldn't match that to one of your bookings. Pick one from the list."
	msgCancelled         = "Your booking is cancelled: %s, %s at %s."
	msgConversationEnded = "Ok. We'll leave it at that for now."
	msgUnknownCommand    = "Sorry, I don't know that command."
	msgInternalError     = "Something went wrong on my side. Please try again."
)
