// budgetctl 预算终端客户端：离线编辑、快照、与预算服务同步
package main

func main() {
	Execute()
}
