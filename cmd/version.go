/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"wsu.dev/wsu/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output == "json" {
			printVersionJSON()
		} else {
			printVersionText()
		}
		return nil
	},
}

func printVersionText() {
	fmt.Printf("wsu %s\n", version.GetVersion())
}

func printVersionJSON() {
	data, err := json.MarshalIndent(version.GetBuildInfo(), "", "  ")
	if err != nil {
		fmt.Printf("error marshaling version info: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version.GetVersion()
	versionCmd.Flags().StringP("output", "o", "text", "output format: text or json")
}
