// Package service contains the use cases of the sandbox scheme backend:
// issuing and confirming OTP challenges, maintaining the linked-card
// registry and accepting payment requests.
//
// The service layer depends on the store interfaces and on the auth
// package for OTP hashing, never on HTTP concerns. Expected failures are
// returned as sentinel errors wrapped in a SchemeServiceError so the API
// layer can map them with errors.Is.
package service
