// Package randomworld implements Conformal Prediction and exchangeability
// martingales, as described in Algorithmic Learning in a Random World
// (Vovk, Gammerman, Shafer).
//
// Given a stream of labelled training examples and unlabelled test objects
// it produces calibrated p-values per candidate label and, at a chosen
// significance level, a set-valued prediction region with a guaranteed
// error probability. A companion Martingale facility consumes a stream of
// p-values and flags departures from exchangeability.
package randomworld

// Verbose, when true, makes CP.Train and CP.PredictConfidence print one
// diagnostic line each to stdout. The CLI collaborators in cmd/ set it
// from their --verbose flag.
var Verbose = false
