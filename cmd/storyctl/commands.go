package main

import (
	"strings"

	"github.com/spf13/cobra"

	"storygen-ai-api/internal/application/story"
)

func generateCmd(opts *rootOptions) *cobra.Command {
	var modelName string

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate a story with character and background descriptions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, _, err := opts.service(cmd)
			if err != nil {
				return err
			}

			if modelName != "" {
				_, err = svc.SetModel(ctx, modelName)
			} else {
				_, err = svc.SelectWorkingModel(ctx)
			}
			if err != nil {
				return err
			}

			result, err := svc.GenerateStoryAndDescriptions(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			return opts.print(cmd.OutOrStdout(), struct {
				*story.StoryResult
				ImagePrompts story.ImagePrompts `json:"image_prompts"`
			}{
				StoryResult:  result,
				ImagePrompts: svc.CreateImagePrompts(result.CharacterDescription, result.BackgroundDescription),
			})
		},
	}
	cmd.Flags().StringVar(&modelName, "model", "", "Model to use instead of automatic selection")
	return cmd
}

func modelsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available models by tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, err := opts.service(cmd)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), svc.ListAvailableModels())
		},
	}
}

func infoCmd(opts *rootOptions) *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the current model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, err := opts.service(cmd)
			if err != nil {
				return err
			}
			if probe {
				if _, err := svc.SelectWorkingModel(cmd.Context()); err != nil {
					return err
				}
			}
			return opts.print(cmd.OutOrStdout(), svc.GetModelInfo())
		},
	}
	cmd.Flags().BoolVar(&probe, "probe", false, "Probe candidates and report the first working model")
	return cmd
}

func imagePromptsCmd(opts *rootOptions) *cobra.Command {
	var character, background string

	cmd := &cobra.Command{
		Use:   "image-prompts",
		Short: "Build image generation prompts from descriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, err := opts.service(cmd)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), svc.CreateImagePrompts(character, background))
		},
	}
	cmd.Flags().StringVar(&character, "character", "", "Character description")
	cmd.Flags().StringVar(&background, "background", "", "Background description")
	cmd.MarkFlagsOneRequired("character", "background")
	return cmd
}
