// Package api provides the cronhook REST API.
//
//	@title						Cronhook API
//	@version					1.0
//	@description				Hosted cron jobs that call HTTP endpoints on a schedule.
//	@BasePath					/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token as "Bearer uz_...".
package api

//go:generate swag init -g doc.go -d .,../model,../core -o docs --outputTypes go
