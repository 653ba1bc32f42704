// Package authsdk is the client SDK for the DEXX-TER authentication service.
//
// It provides typed request/response structures shared between the server and
// clients, a thin HTTP client for the login endpoints, and a LoginFlow state
// machine that mirrors the two-step admin login UI.
package authsdk
