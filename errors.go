/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Game-level failures surfaced to the acting client through its
// acknowledgment, never fatal to the session.
var (
	ErrInvalidState      = errors.New("action not valid in the current phase")
	ErrNotAuthorized     = errors.New("player not allowed to perform this action")
	ErrEmptyDeck         = errors.New("deck is empty")
	ErrCardNotFound      = errors.New("card not found")
	ErrInsufficientCards = errors.New("not enough cards to continue")
	ErrLobbyStarted      = errors.New("lobby is no longer accepting players")
	ErrUnknownPlayer     = errors.New("player is not part of the lobby")
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
