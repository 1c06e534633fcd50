// Package light builds the JSON commands sent to station light actuators.
//
// A command is one of:
//
//	{"state":"OFF"}
//	{"state":"ON","brightness":127,"color":{"r":0,"g":255,"b":0},"effect":"none"}
//	{"state":"ON","effect":"strobe"}
//	{"state":"ON","effect":"Fast Pulse","color":{...},"brightness":255}
//
// Brightness is on the firmware's 0-255 scale; circuit definitions give
// percentages, converted with ScaleBrightness.
package light
