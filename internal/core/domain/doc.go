// Package domain defines the core business entities of the persona
// chatbot service: personas, documents and their chunks, conversation
// turns, and the guarded generation result. These types have no
// dependencies on storage, transport or model providers.
package domain
