// Package events defines the map lifecycle events and the dispatcher delivering them to observers.
package events

import "github.com/jljohnson/mindmup/mapcontent"

type Type string

const (
	TypeMapLoading             Type = "mapLoading"
	TypeMapLoaded              Type = "mapLoaded"
	TypeMapLoadingFailed       Type = "mapLoadingFailed"
	TypeMapLoadingUnAuthorized Type = "mapLoadingUnAuthorized"
	TypeMapSaving              Type = "mapSaving"
	TypeMapSaved               Type = "mapSaved"
	TypeMapSavingFailed        Type = "mapSavingFailed"
	TypeMapSavingUnAuthorized  Type = "mapSavingUnAuthorized"
)

// Types lists every event type in lifecycle order
var Types = []Type{
	TypeMapLoading,
	TypeMapLoaded,
	TypeMapLoadingFailed,
	TypeMapLoadingUnAuthorized,
	TypeMapSaving,
	TypeMapSaved,
	TypeMapSavingFailed,
	TypeMapSavingUnAuthorized,
}

type Event interface {
	Type() Type
}

// MapLoading is dispatched before a load starts
type MapLoading struct {
	ID string
}

type MapLoaded struct {
	Content *mapcontent.Content
	ID      string
}

type MapLoadingFailed struct {
	ID     string
	Reason string
	Extra  []any
	Err    error
}

type MapLoadingUnAuthorized struct {
	ID     string
	Reason string
}

// MapSaving is dispatched before a save starts
type MapSaving struct{}

type MapSaved struct {
	ID      string
	Content *mapcontent.Content
	// IsNew is set when the backend stored the map under a different id
	IsNew bool
}

type MapSavingFailed struct {
	Reason string
	Extra  []any
	Err    error
}

type MapSavingUnAuthorized struct {
	Reason string
}

func (MapLoading) Type() Type             { return TypeMapLoading }
func (MapLoaded) Type() Type              { return TypeMapLoaded }
func (MapLoadingFailed) Type() Type       { return TypeMapLoadingFailed }
func (MapLoadingUnAuthorized) Type() Type { return TypeMapLoadingUnAuthorized }
func (MapSaving) Type() Type              { return TypeMapSaving }
func (MapSaved) Type() Type               { return TypeMapSaved }
func (MapSavingFailed) Type() Type        { return TypeMapSavingFailed }
func (MapSavingUnAuthorized) Type() Type  { return TypeMapSavingUnAuthorized }
