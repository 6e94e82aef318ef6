package cli

import (
	"github.com/spf13/cobra"
)

func newCharacterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "character",
		Short: "Character sheet commands",
	}

	cmd.AddCommand(newCharacterListCmd())
	cmd.AddCommand(newCharacterCreateCmd())
	cmd.AddCommand(newCharacterDeleteCmd())

	return cmd
}

func newCharacterListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your characters",
		RunE: func(cmd *cobra.Command, args []string) error {
			characters, err := client.ListCharacters(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(characters)
			return nil
		},
	}
}

func newCharacterCreateCmd() *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a character",
		RunE: func(cmd *cobra.Command, args []string) error {
			character, err := client.CreateCharacter(cmd.Context(), name, description)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(character)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Character name (required)")
	cmd.Flags().StringVar(&description, "description", "", "Character description")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newCharacterDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.DeleteCharacter(cmd.Context(), args[0]); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Character deleted")
			return nil
		},
	}
}
