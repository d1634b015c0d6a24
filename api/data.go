package main

import "time"

type user struct {
	ID           int       `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `json:"username"`
	Email        string    `json:"-"`
	PasswordHash []byte    `json:"-"`
}

type habit struct {
	ID        int    `json:"id"`
	UserID    int    `json:"-"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}
