package xltrack

import (
	"context"

	"go.alis.build/alog"
)

// Fixed image placement metrics, in pixels.
const (
	defaultImageInsetX  = 4
	defaultImageInsetY  = 20
	defaultImageOffsetX = 2
	defaultImageOffsetY = 4
)

// Options holds configuration for a Report and the sheets it opens.
type Options struct {
	exportPath   string
	resolver     Resolver
	codec        ImageCodec
	imageInsetX  int
	imageInsetY  int
	imageOffsetX int
	imageOffsetY int
	logLevel     *alog.LogLevel
	logCtx       context.Context
	listeners    []CopyListener
	preSave      func(Grid) error
}

func defaultOptions() *Options {
	return &Options{
		resolver:     NewLookupResolver(FieldLookup),
		codec:        NewImageCodec(),
		imageInsetX:  defaultImageInsetX,
		imageInsetY:  defaultImageInsetY,
		imageOffsetX: defaultImageOffsetX,
		imageOffsetY: defaultImageOffsetY,
		logCtx:       context.Background(),
	}
}

// Option configures a Report.
type Option func(*Options)

// WithExportPath sets the directory SaveAs writes into.
func WithExportPath(dir string) Option {
	return func(o *Options) { o.exportPath = dir }
}

// WithResolver sets the resolver used by value bindings.
func WithResolver(r Resolver) Option {
	return func(o *Options) { o.resolver = r }
}

// WithLookup resolves bindings with a caller-supplied member lookup.
func WithLookup(fn LookupFunc) Option {
	return func(o *Options) { o.resolver = NewLookupResolver(fn) }
}

// WithImageCodec replaces the image codec used by SetImage.
func WithImageCodec(c ImageCodec) Option {
	return func(o *Options) { o.codec = c }
}

// WithImageInset sets the pixels subtracted from a scaled image's width and height (default: 4, 20).
func WithImageInset(x, y int) Option {
	return func(o *Options) {
		o.imageInsetX = x
		o.imageInsetY = y
	}
}

// WithImageOffset sets the image offset from the anchor cell's top-left corner (default: 2, 4).
func WithImageOffset(x, y int) Option {
	return func(o *Options) {
		o.imageOffsetX = x
		o.imageOffsetY = y
	}
}

// WithLogLevel sets the minimum alog level.
func WithLogLevel(level alog.LogLevel) Option {
	return func(o *Options) { o.logLevel = &level }
}

// WithLogContext sets the context attached to log entries (trace correlation only).
func WithLogContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.logCtx = ctx
		}
	}
}

// WithCopyListener adds a listener notified around every copied cell.
func WithCopyListener(l CopyListener) Option {
	return func(o *Options) { o.listeners = append(o.listeners, l) }
}

// WithPreSave sets a callback executed before the workbook is saved or written.
func WithPreSave(fn func(Grid) error) Option {
	return func(o *Options) { o.preSave = fn }
}

// CopyListener is notified before and after each cell copy.
type CopyListener interface {
	// BeforeCopyCell is called before src is copied to target.
	// Return false to skip the default copy for this cell.
	BeforeCopyCell(sheet string, src, target CellRef, g Grid) bool

	// AfterCopyCell is called after a cell has been copied.
	AfterCopyCell(sheet string, src, target CellRef, g Grid)
}
