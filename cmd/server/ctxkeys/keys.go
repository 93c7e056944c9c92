// Package ctxkeys names the fiber.Ctx locals shared by middlewares and handlers.
package ctxkeys

// OwnerKey holds the identity.Owner of a request that passed the JWT middleware.
const OwnerKey = "owner"

// TokenKey holds the raw *jwt.Token stored by the contrib JWT middleware.
const TokenKey = "user"

// ParentCtxKey carries the request context into the WebSocket handler.
const ParentCtxKey = "parentCtx"
