package command

import "strings"

// lexicon is the fixed set of well-known Unix/Linux commands used to
// recognize prose mentions and indented code that carries no prompt.
var lexicon = map[string]bool{}

func init() {
	for _, name := range strings.Fields(`
		ls cd pwd mkdir rmdir rm cp mv touch
		cat less more head tail grep find locate
		which whereis man info help type alias
		echo printf read export set unset env
		chmod chown chgrp umask su sudo passwd
		ps top htop kill killall jobs bg fg
		nohup nice renice wait
		tar gzip gunzip bzip2 zip unzip xz
		wget curl ssh scp rsync ftp sftp
		apt apt-get yum dnf pacman snap flatpak
		pip npm gem
		sed awk sort uniq wc cut paste tr
		diff comm patch tee xargs
		date cal uptime free df du mount umount
		ifconfig ip ping netstat ss traceroute dig
		nslookup host
		git docker make gcc python bash sh zsh
		vim vi nano emacs ed
		history fc source exec eval
		test expr bc file stat ln readlink
		tput clear reset stty
		crontab at systemctl service journalctl`) {
		lexicon[name] = true
	}
}

// Known reports whether name is in the command lexicon.
func Known(name string) bool {
	return lexicon[name]
}
