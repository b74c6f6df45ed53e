// Package spage is the entry point of the framework: it assembles the page
// lifecycle controller from its collaborators (logger, session store,
// translations, transaction executor) and exposes the http surface.
package spage

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/syntax-framework/spage/live"
	"github.com/syntax-framework/spage/session"
	"github.com/syntax-framework/spage/swp"
	"github.com/syntax-framework/spage/trans"
)

// Options everything New needs; every field is optional
type Options struct {
	// Log defaults to a no-op logger
	Log *zap.Logger

	// Sessions defaults to the in-memory store. Use session.NewBoltStore for
	// sessions that survive a restart.
	Sessions session.Store

	// Translations path of a yaml message table overriding the built-in
	// English texts
	Translations string

	// WatchTranslations reloads the message table when the file changes
	WatchTranslations bool

	// Tx wraps post-back modification methods in a transaction; defaults to
	// running them directly
	Tx swp.TransactionExecutor
}

// System one configured framework instance
type System struct {
	App  *swp.App
	Live *live.Hub

	log       *zap.Logger
	stopWatch func()
}

// New assembles a System from options. nil options means all defaults.
func New(options *Options) (*System, error) {
	if options == nil {
		options = &Options{}
	}
	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	translator := trans.New()
	system := &System{log: log}

	if options.Translations != "" {
		if err := translator.LoadFile(options.Translations); err != nil {
			return nil, err
		}
		if options.WatchTranslations {
			stop, err := translator.Watch(options.Translations, func(err error) {
				log.Warn("translation reload failed", zap.Error(err))
			})
			if err != nil {
				return nil, err
			}
			system.stopWatch = stop
		}
	}

	app := swp.NewApp(log, options.Sessions, translator)
	if options.Tx != nil {
		app.Tx = options.Tx
	}

	system.App = app
	system.Live = live.NewHub(log)
	return system, nil
}

// Handle mounts a page on the mux under its own url
func (s *System) Handle(mux *http.ServeMux, page swp.Page) {
	mux.Handle(page.GetUrl(), s.App.Handler(page))
}

// HandleLive mounts the websocket push endpoint for a topic
func (s *System) HandleLive(mux *http.ServeMux, pattern string, topic string) {
	mux.Handle(pattern, s.Live.Handler(topic))
}

// Close releases everything the system holds open
func (s *System) Close() error {
	s.Live.Close()
	if s.stopWatch != nil {
		s.stopWatch()
	}
	return s.App.Sessions.Close()
}
