package server

func (s *Server) setupRoutes() {
	// Event stream for the presentation layer.
	s.router.Get("/event", s.streamEvents)

	// Session core commands.
	s.router.Post("/connection/connect", s.connect)
	s.router.Post("/connection/disconnect", s.disconnect)
	s.router.Get("/connection/status", s.connectionStatus)
	s.router.Post("/connection/send", s.send)

	// Local history.
	s.router.Get("/conversation", s.listConversations)
	s.router.Post("/conversation", s.createConversation)
	s.router.Post("/conversation/id", s.generateConversationID)
	s.router.Patch("/conversation/{conversationID}", s.renameConversation)
	s.router.Delete("/conversation/{conversationID}", s.deleteConversation)
	s.router.Get("/conversation/{conversationID}/message", s.listMessages)
	s.router.Post("/conversation/{conversationID}/message", s.appendMessage)

	// Auxiliary collaborators.
	s.router.Get("/usage", s.usageStatus)
	s.router.Get("/update", s.updateCheck)
	s.router.Get("/version", s.version)
	s.router.Get("/notice", s.notice)
}
