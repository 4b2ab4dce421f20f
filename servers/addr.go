package servers

import (
	"net"
	"os"
	"strconv"

	"github.com/reusee/quizrun/cmds"
	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/vars"
)

var addrFlag = cmds.Var[string]("-addr")

type ListenAddr string

func (Module) ListenAddr(
	loader configs.Loader,
) ListenAddr {
	port := configs.First[int](loader, "port")
	if port == 0 {
		port, _ = strconv.Atoi(os.Getenv("PORT"))
	}
	if port == 0 {
		port = 7860
	}
	return vars.FirstNonZero(
		ListenAddr(*addrFlag),
		configs.First[ListenAddr](loader, "listen_addr"),
		ListenAddr(net.JoinHostPort("0.0.0.0", strconv.Itoa(port))),
	)
}
