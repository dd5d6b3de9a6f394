package cmd

import (
	"tripkeeper/cmd/client/cmd/auth"
	"tripkeeper/cmd/client/cmd/company"
	"tripkeeper/cmd/client/cmd/expense"
	"tripkeeper/cmd/client/cmd/sync"
	"tripkeeper/cmd/client/cmd/trip"
	"tripkeeper/cmd/client/cmd/vehicle"
)

func init() {
	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.RegisterCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)

	rootCmd.AddCommand(trip.TripCmd)
	trip.TripCmd.AddCommand(trip.LogCmd)
	trip.TripCmd.AddCommand(trip.ListCmd)
	trip.TripCmd.AddCommand(trip.DeleteCmd)

	rootCmd.AddCommand(expense.ExpenseCmd)
	expense.ExpenseCmd.AddCommand(expense.AddCmd)
	expense.ExpenseCmd.AddCommand(expense.ListCmd)
	expense.ExpenseCmd.AddCommand(expense.DeleteCmd)

	rootCmd.AddCommand(vehicle.VehicleCmd)
	vehicle.VehicleCmd.AddCommand(vehicle.AddCmd)
	vehicle.VehicleCmd.AddCommand(vehicle.ListCmd)

	rootCmd.AddCommand(company.CompanyCmd)
	company.CompanyCmd.AddCommand(company.JoinCmd)
	company.CompanyCmd.AddCommand(company.ListCmd)

	rootCmd.AddCommand(sync.SyncCmd)
}
