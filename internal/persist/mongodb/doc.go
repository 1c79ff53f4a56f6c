// Package mongodb stores the combined voice and text score documents for
// analyzed interview answers.
package mongodb
