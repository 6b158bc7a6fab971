// Package service implements name matching between two datasets: key
// normalization, prefix blocking, ratio scoring and threshold filtering.
package service
