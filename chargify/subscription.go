package chargify

import (
	"context"

	"kr.dev/errorfmt"
)

type Customer struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Organization string `json:"organization,omitempty"`
	Reference    string `json:"reference,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

type Subscription struct {
	ID       int64    `json:"id"`
	State    string   `json:"state"`
	Customer Customer `json:"customer"`
	Product  Product  `json:"product"`
}

// CreateSubscription posts req, which must encode as a Chargify subscription
// request ({"subscription": {...}}), and returns the created subscription.
func (c *Client) CreateSubscription(ctx context.Context, req any) (_ Subscription, err error) {
	defer errorfmt.Handlef("chargify: CreateSubscription: %w", &err)
	var v struct {
		Subscription Subscription `json:"subscription"`
	}
	if err := c.Post(ctx, "/subscriptions.json", req, &v); err != nil {
		return Subscription{}, err
	}
	return v.Subscription, nil
}

// Customer fetches a single customer by id.
func (c *Client) Customer(ctx context.Context, id int64) (_ Customer, err error) {
	defer errorfmt.Handlef("chargify: Customer(%d): %w", id, &err)
	var v struct {
		Customer Customer `json:"customer"`
	}
	if err := c.Get(ctx, idPath("/customers/%d.json", id), &v); err != nil {
		return Customer{}, err
	}
	return v.Customer, nil
}
