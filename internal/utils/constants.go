package utils

// Application Constants
const (
	AppName    = "Bidquotes"
	AppVersion = "1.0.0"

	// Default values
	DefaultCurrency = "CAD"
	DefaultTimeZone = "UTC"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Bidding Constants
	MaxBidsPerJob        = 5
	MaxSelectionsPerJob  = 3
	MaxImagesPerJob      = 6
	MaxJobTitleLength    = 120
	MaxBidTitleLength    = 120
	MaxDescriptionLength = 5000

	// Payment Constants
	BidPaymentAmountCents     = 7000  // $70.00 CAD bid submission fee
	CreditPurchaseAmountCents = 70000 // $700.00 CAD credit bundle
	CreditPurchaseQuantity    = 20    // credits received per bundle

	// File Upload
	MaxImageSize = 5 * 1024 * 1024 // 5MB
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrUserNotFound         = "user not found"
	ErrJobNotFound          = "job not found"
	ErrBidNotFound          = "bid not found"
	ErrInvalidToken         = "invalid token"
	ErrInvalidInput         = "invalid input"
	ErrInternalServer       = "internal server error"
	ErrUnauthorized         = "unauthorized"
	ErrForbidden            = "forbidden"
	ErrValidationFailed     = "validation failed"
	ErrPaymentFailed        = "payment failed"
	ErrInsufficientCredits  = "insufficient credits"
	ErrJobNotAcceptingBids  = "this job is no longer accepting bids"
	ErrMaxBidsReached       = "this job already has the maximum number of bids"
	ErrSelfBid              = "cannot bid on your own job"
	ErrDuplicateBid         = "you have already submitted a bid or saved a draft for this job"
	ErrMaxSelectionsReached = "maximum number of bid selections reached for this job"
)
