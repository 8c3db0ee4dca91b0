// Package notify delivers advisory notifications to the terminal and the
// verbose log. Delivery never fails and never blocks for long.
package notify
