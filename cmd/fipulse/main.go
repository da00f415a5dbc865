// fipulse is the Ethiopia financial inclusion analytics toolkit: dataset
// exploration, event-impact modeling, forecasting, policy reports and the
// dashboard API server.
package main

func main() {
	Execute()
}
