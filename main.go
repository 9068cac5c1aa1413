// main.go --  This file is part of goFT project.
// Mirzaeva Irina, 2023
//
//	goFT is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
//	You should have received a copy of the GNU General Public License
//	along with this program.  If not, see http://www.gnu.org/licenses/
//
// ------------------------------------------------
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"example.com/goft/config"
	"example.com/goft/logs"
	"example.com/goft/system"
)

func appInfo() {
	logs.OutputLogger.Print("\n                 ______ ______    |\n                /\\  ___\\\\__  _\\   |" +
		" Author: Mirzaeva Irina Valerievna\n   __     ___  \\ \\ \\__/\\/_/\\ \\/   | email: dairdre@gmail.com\n" +
		" /'_ `\\  / __`\\ \\ \\  _\\   \\ \\ \\   | Nikolaev Institute of Inorganic Chemistry SB RAS" +
		" (http://niic.nsc.ru/)\n/\\ \\L\\ \\/\\ \\L\\ \\ \\ \\ \\/    \\ \\ \\  | Novosibirsk, Russia" +
		"\n\\ \\____ \\ \\____/  \\ \\_\\     \\ \\_\\ | FT stands for Field Theory\n \\/___L\\" +
		" \\/___/    \\/_/      \\/_/ | Have Fun!!!\n   /\\____/                        |\n   \\_/__/                         |\n\n")
}

func main() {
	var paramFname, commandFname string
	var nprocs int
	flag.StringVar(&paramFname, "p", "", "parameter file (TOML)")
	flag.StringVar(&commandFname, "c", "", "command file")
	flag.IntVar(&nprocs, "t", 1, "number of threads")
	flag.Parse()
	if paramFname == "" || commandFname == "" {
		flag.Usage()
		log.Fatal("Parameter and command files are required.")
	}
	runtime.GOMAXPROCS(nprocs)

	outFname := outputName(paramFname)
	fmt.Println("Output file: ", outFname)
	logFile, err := logs.Init(outFname)
	if err != nil {
		log.Fatal(err)
	}
	defer logFile.Close()

	tstart := time.Now()
	logs.InfoLogger.Println("Starting goFT...")
	appInfo()
	logs.OutputLogger.Println("Number of threads set to ", nprocs, ".")

	if err := echoFile("Parameter file content:", paramFname); err != nil {
		logs.ErrorLogger.Fatal("Cannot read parameter file: ", err)
	}
	if err := echoFile("Command file content:", commandFname); err != nil {
		logs.ErrorLogger.Fatal("Cannot read command file: ", err)
	}

	params, err := config.Load(paramFname)
	if err != nil {
		logs.ErrorLogger.Fatal(err)
	}
	if params.Domain.Threads == 0 {
		params.Domain.Threads = nprocs
	}
	sys, err := system.New(params)
	if err != nil {
		logs.ErrorLogger.Fatal(err)
	}

	if err := sys.ReadCommands(commandFname); err != nil {
		logs.ErrorLogger.Println(err)
		fmt.Println("goFT failed: ", err)
		logFile.Close()
		os.Exit(1)
	}

	logs.Delimiter()
	memoryReport()
	logs.OutputLogger.Println("Total time: ", time.Since(tstart))
	logs.InfoLogger.Println("Exiting goFT...")
	fmt.Println("goFT done.")
}
