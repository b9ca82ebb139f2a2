// Package models contains the GORM persistence models behind the storefront tables.
// Domain entities carry no ORM tags; each model converts with ToDomain and FromDomain.
//
//   - base.go: BaseModel, AggregateModel and shared column types
//   - catalog.go: products and the three taxonomy levels
//   - order.go: orders, order_items and order_status_history
package models
