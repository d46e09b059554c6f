// Package telemetry reads the headerless RSSI/GNSS capture files written by
// the robot's radio logger.
//
// Columns are positional: rssi (dBm), lat, lon (degrees), alt (m) and
// heading (degrees). Only the first three are required; rows whose rssi,
// lat or lon cannot be parsed are dropped and counted rather than reported.
package telemetry
