package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"condocheck/internal/model"
)

var vendorCmd = &cobra.Command{
	Use:   "vendor",
	Short: "Manage service providers",
}

var vendorAddFlags struct {
	name     string
	taxID    string
	phone    string
	category string
}

var vendorAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a vendor",
	Args:  cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		vendor := model.Vendor{
			CondoID:  condoID,
			Name:     vendorAddFlags.name,
			TaxID:    vendorAddFlags.taxID,
			Phone:    vendorAddFlags.phone,
			Category: vendorAddFlags.category,
		}
		if err := e.app.Procurement.SaveVendor(ctx, user.Actor(), &vendor, e.now); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "vendor %d %s\n", vendor.ID, vendor.Name)
		return nil
	}),
}

var vendorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vendors",
	Args:  cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		vendors, err := e.app.Procurement.Vendors(ctx, condoID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(vendors) == 0 {
			fmt.Fprintln(out, paint(mutedStyle, "nenhum fornecedor"))
			return nil
		}
		for _, v := range vendors {
			writeVendor(out, v)
		}
		return nil
	}),
}

var vendorDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Remove a vendor",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := e.app.Procurement.DeleteVendor(ctx, user.Actor(), condoID, id, e.now); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "vendor %d deleted\n", id)
		return nil
	}),
}

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Track vendor quotations and their approval",
}

var budgetAddFlags struct {
	title       string
	description string
	vendor      uint
	value       float64
	items       []string
}

var budgetAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a quotation",
	Long: "Register a quotation. Items are given as DESCRIPTION:QUANTITY:UNIT_PRICE and,\n" +
		"when --value is omitted, their total becomes the quotation value.",
	Args: cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		budget := model.Budget{
			CondoID:     condoID,
			Title:       budgetAddFlags.title,
			Description: budgetAddFlags.description,
			Value:       budgetAddFlags.value,
		}
		if budgetAddFlags.vendor != 0 {
			id := budgetAddFlags.vendor
			budget.VendorID = &id
		}
		for _, raw := range budgetAddFlags.items {
			item, err := parseBudgetItem(raw)
			if err != nil {
				return err
			}
			budget.Items = append(budget.Items, item)
		}
		if err := e.app.Procurement.SaveBudget(ctx, user.Actor(), &budget, e.now); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "budget %d %s %s\n", budget.ID, budget.Title, model.FormatMoney(budget.Value))
		return nil
	}),
}

var budgetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List quotations",
	Args:  cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		budgets, err := e.app.Procurement.Budgets(ctx, condoID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(budgets) == 0 {
			fmt.Fprintln(out, paint(mutedStyle, "nenhum orçamento"))
			return nil
		}
		for _, b := range budgets {
			writeBudget(out, b)
		}
		return nil
	}),
}

func budgetDecisionCmd(use, short string, approve bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			budget, err := e.app.Procurement.Decide(ctx, user.Actor(), condoID, id, approve, e.now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "budget %d %s\n", budget.ID, budget.Status.Label())
			return nil
		}),
	}
}

var budgetDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Remove a quotation",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, e *env, user model.User, condoID uint, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := e.app.Procurement.DeleteBudget(ctx, user.Actor(), condoID, id, e.now); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "budget %d deleted\n", id)
		return nil
	}),
}

// parseBudgetItem reads DESCRIPTION:QUANTITY:UNIT_PRICE. Decimal commas are accepted.
func parseBudgetItem(raw string) (model.BudgetItem, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 || strings.TrimSpace(parts[0]) == "" {
		return model.BudgetItem{}, fmt.Errorf("invalid item %q: want DESCRIPTION:QUANTITY:UNIT_PRICE", raw)
	}
	qty, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(parts[1]), ",", "."), 64)
	if err != nil {
		return model.BudgetItem{}, fmt.Errorf("invalid item quantity %q", parts[1])
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(parts[2]), ",", "."), 64)
	if err != nil {
		return model.BudgetItem{}, fmt.Errorf("invalid item price %q", parts[2])
	}
	return model.BudgetItem{Description: strings.TrimSpace(parts[0]), Quantity: qty, UnitPrice: price}, nil
}

func init() {
	f := vendorAddCmd.Flags()
	f.StringVar(&vendorAddFlags.name, "name", "", "vendor name")
	f.StringVar(&vendorAddFlags.taxID, "tax-id", "", "CNPJ or CPF")
	f.StringVar(&vendorAddFlags.phone, "phone", "", "contact phone")
	f.StringVar(&vendorAddFlags.category, "category", "", "service category")
	vendorCmd.AddCommand(vendorAddCmd, vendorListCmd, vendorDeleteCmd)

	f = budgetAddCmd.Flags()
	f.StringVar(&budgetAddFlags.title, "title", "", "quotation title")
	f.StringVar(&budgetAddFlags.description, "description", "", "scope of the work")
	f.UintVar(&budgetAddFlags.vendor, "vendor", 0, "vendor id")
	f.Float64Var(&budgetAddFlags.value, "value", 0, "quoted value (defaults to the items total)")
	f.StringArrayVar(&budgetAddFlags.items, "item", nil, "DESCRIPTION:QUANTITY:UNIT_PRICE (repeatable)")
	budgetCmd.AddCommand(
		budgetAddCmd,
		budgetListCmd,
		budgetDecisionCmd("approve", "Approve a pending quotation", true),
		budgetDecisionCmd("reject", "Reject a pending quotation", false),
		budgetDeleteCmd,
	)

	rootCmd.AddCommand(vendorCmd, budgetCmd)
}
