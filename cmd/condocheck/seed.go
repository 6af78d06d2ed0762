package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"condocheck/internal/model"
	"condocheck/internal/service"
)

type seedFile struct {
	Condos  []seedCondo  `toml:"condos"`
	Users   []seedUser   `toml:"users"`
	Vendors []seedVendor `toml:"vendors"`
}

type seedCondo struct {
	Name       string   `toml:"name"`
	Address    string   `toml:"address"`
	Categories []string `toml:"categories"`
}

type seedUser struct {
	Name     string `toml:"name"`
	Role     string `toml:"role"`
	JobTitle string `toml:"job_title"`
	Email    string `toml:"email"`
	Password string `toml:"password"`
	Condo    string `toml:"condo"`
	Inactive bool   `toml:"inactive"`
}

type seedVendor struct {
	Name     string `toml:"name"`
	TaxID    string `toml:"tax_id"`
	Phone    string `toml:"phone"`
	Category string `toml:"category"`
	Condo    string `toml:"condo"`
}

var seedCmd = &cobra.Command{
	Use:   "seed FILE",
	Short: "Load condominiums, users and vendors from a TOML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data seedFile
		if _, err := toml.DecodeFile(args[0], &data); err != nil {
			return fmt.Errorf("read seed file: %w", err)
		}

		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		condos := make(map[string]uint)
		for _, c := range data.Condos {
			condo, err := e.app.Condos.Create(ctx, model.SystemActor, c.Name, c.Address, e.now)
			if err != nil {
				return fmt.Errorf("condo %q: %w", c.Name, err)
			}
			for _, cat := range c.Categories {
				if err := e.app.Condos.AddCategory(ctx, model.SystemActor, condo.ID, cat); err != nil {
					return fmt.Errorf("category %q: %w", cat, err)
				}
			}
			condos[condo.Name] = condo.ID
			fmt.Fprintf(out, "condo %d %s\n", condo.ID, condo.Name)
		}

		for _, u := range data.Users {
			input := service.UserInput{
				Name:     u.Name,
				Role:     model.Role(strings.ToUpper(u.Role)),
				JobTitle: u.JobTitle,
				Email:    u.Email,
				Password: u.Password,
				Active:   !u.Inactive,
			}
			if u.Condo != "" {
				id, ok := condos[u.Condo]
				if !ok {
					return fmt.Errorf("user %q: unknown condo %q", u.Name, u.Condo)
				}
				input.CondoID = &id
			}
			user, err := e.app.Users.Register(ctx, model.SystemActor, input, e.now)
			if err != nil {
				return fmt.Errorf("user %q: %w", u.Name, err)
			}
			fmt.Fprintf(out, "user %d %s (%s)\n", user.ID, user.Name, user.Role)
		}

		for _, v := range data.Vendors {
			id, ok := condos[v.Condo]
			if !ok {
				return fmt.Errorf("vendor %q: unknown condo %q", v.Name, v.Condo)
			}
			vendor := model.Vendor{CondoID: id, Name: v.Name, TaxID: v.TaxID, Phone: v.Phone, Category: v.Category}
			if err := e.app.Procurement.SaveVendor(ctx, model.SystemActor, &vendor, e.now); err != nil {
				return fmt.Errorf("vendor %q: %w", v.Name, err)
			}
			fmt.Fprintf(out, "vendor %d %s\n", vendor.ID, vendor.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
