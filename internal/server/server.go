package server

import "geo_feedback/pkg/contextx"

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Данный сервер объединяет HTTP сервера, отвечающие за обработку конкретных сущностей
type Server struct {
	MarketServer
	PostalServer
}

func NewServer(
	marketServer MarketServer,
	postalServer PostalServer,
) Server {
	return Server{
		MarketServer: marketServer,
		PostalServer: postalServer,
	}
}
