package server

//go:generate swag init -g internal/server/server.go -o internal/server/docs

// @title Courier API
// @version 0.1
// @description Local bridge between the request editor and the dispatcher.
// @contact.name Courier Maintainers
// @contact.url https://github.com/raysh454/courier
// @BasePath /
