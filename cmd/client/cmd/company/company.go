package company

import (
	"github.com/spf13/cobra"
)

// CompanyCmd is the parent command for company link operations.
var CompanyCmd = &cobra.Command{
	Use:   "company",
	Short: "Manage company links",
	Long:  `Join a company with an invitation code and inspect existing links.`,
}
