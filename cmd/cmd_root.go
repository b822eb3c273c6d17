package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ecocsm",
	Short: "汚染地点の報告・近隣検索サービス",
	Long: `
ecocsm は市民が報告した汚染地点を Firestore で管理し、
現在地から近い地点の検索・詳細表示・写真の追加を提供する。
`,
}

var Version = "dev"

func Execute(version string) {
	Version = version
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
