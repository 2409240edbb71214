// Package domain defines the core domain models for lingvo.
//
// Domain models are pure value objects without any IO dependencies.
// This package contains:
//
//   - Session, Identity and the Authorize decision function
//   - Translation, Payment (with the PaymentRef loaded/not-loaded tag), DailyStats
//   - ClientError: the tagged error union shared by every layer
//   - Local validation for registration and translation orders
package domain
